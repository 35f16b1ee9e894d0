package gateway

import "context"

// Result is the slice of the gateway response the order keeps.
type Result struct {
	Success       bool
	TransactionID string
}

// Gateway is the payment processor seen from the handlers: a client token
// for the embedded payment UI, and a one-shot charge of a payment nonce.
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Sale(ctx context.Context, amount float64, nonce string) (*Result, error)
}
