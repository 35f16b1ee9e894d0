package storecli

import (
	"context"
	"errors"
	"log/slog"
)

// Step says which affordance the checkout page shows next. Items render in
// every step; the step only gates what sits under them.
type Step string

const (
	StepLoginRequired      Step = "login_required"
	StepAddressRequired    Step = "address_required"
	StepPaymentUnavailable Step = "payment_unavailable"
	StepPaymentReady       Step = "payment_ready"
)

// State is one evaluation of the checkout gates.
type State struct {
	Items       []CartItem
	Total       string
	Step        Step
	ClientToken string
	// ReturnTo records where a login flow should come back to.
	ReturnTo string
}

// NonceProvider stands in for the gateway's embedded payment UI: given a
// client token it yields a one-time payment nonce.
type NonceProvider interface {
	PaymentNonce(ctx context.Context, clientToken string) (string, error)
}

type Checkout struct {
	Client *Client
	Cart   *Cart
	Logger *slog.Logger
}

func (co *Checkout) logger() *slog.Logger {
	if co.Logger != nil {
		return co.Logger
	}
	return slog.Default()
}

// State walks the gates in order: authenticated, address on file, gateway
// client token. A failed token fetch is logged and leaves payment simply
// unavailable; nothing else is surfaced.
func (co *Checkout) State(ctx context.Context) State {
	st := State{
		Items: co.Cart.Get(),
		Total: co.Cart.TotalDisplay(),
	}

	if !co.Client.Authenticated() {
		st.Step = StepLoginRequired
		st.ReturnTo = "/cart"
		return st
	}

	session := co.Client.Session.Current()
	if session == nil || session.User.Address == "" {
		st.Step = StepAddressRequired
		return st
	}

	token, err := co.Client.PaymentToken(ctx)
	if err != nil {
		co.logger().Error("client_token_fetch_failed", "error", err)
		st.Step = StepPaymentUnavailable
		return st
	}

	st.Step = StepPaymentReady
	st.ClientToken = token
	return st
}

var ErrNotReady = errors.New("storecli: checkout is not ready for payment")

// Submit asks the payment UI for a nonce and exchanges it for a charge of
// the current cart. The cart is left as it is either way: on failure so
// the buyer can retry, on success because clearing is not this
// component's call.
func (co *Checkout) Submit(ctx context.Context, ui NonceProvider) error {
	st := co.State(ctx)
	if st.Step != StepPaymentReady {
		return ErrNotReady
	}

	nonce, err := ui.PaymentNonce(ctx, st.ClientToken)
	if err != nil {
		co.logger().Error("payment_nonce_failed", "error", err)
		return err
	}

	if err := co.Client.Pay(ctx, st.Items, nonce); err != nil {
		co.logger().Error("payment_failed", "error", err)
		return err
	}

	return nil
}
