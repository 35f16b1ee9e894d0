package gateway

import (
	"context"
	"fmt"
	"math"

	braintree "github.com/braintree-go/braintree-go"
)

type Braintree struct {
	bt *braintree.Braintree
}

func NewBraintree(env, merchantID, publicKey, privateKey string) (*Braintree, error) {
	e, err := braintree.EnvironmentFromName(env)
	if err != nil {
		return nil, fmt.Errorf("braintree environment %q: %w", env, err)
	}
	return &Braintree{bt: braintree.New(e, merchantID, publicKey, privateKey)}, nil
}

func (g *Braintree) ClientToken(ctx context.Context) (string, error) {
	return g.bt.ClientToken().Generate(ctx)
}

func (g *Braintree) Sale(ctx context.Context, amount float64, nonce string) (*Result, error) {
	cents := int64(math.Round(amount * 100))
	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, TransactionID: tx.Id}, nil
}
