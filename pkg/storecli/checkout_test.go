package storecli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverState struct {
	tokenCalls   atomic.Int64
	tokenStatus  int
	paymentCalls atomic.Int64

	lastAuth  string
	lastNonce string
	lastCart  []CartItem
}

func newAPIServer(t *testing.T, st *serverState) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/product/braintree/token", func(w http.ResponseWriter, r *http.Request) {
		st.tokenCalls.Add(1)
		st.lastAuth = r.Header.Get("Authorization")
		if st.tokenStatus != 0 {
			http.Error(w, `{"message":"gateway error"}`, st.tokenStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"clientToken": "ct-123"})
	})
	mux.HandleFunc("/api/v1/product/braintree/payment", func(w http.ResponseWriter, r *http.Request) {
		st.paymentCalls.Add(1)
		st.lastAuth = r.Header.Get("Authorization")
		var body struct {
			Cart  []CartItem `json:"cart"`
			Nonce string     `json:"nonce"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		st.lastNonce = body.Nonce
		st.lastCart = body.Cart
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeUI struct {
	nonce string
	err   error
}

func (f *fakeUI) PaymentNonce(ctx context.Context, clientToken string) (string, error) {
	return f.nonce, f.err
}

func newCheckout(t *testing.T, baseURL string, session *Session) *Checkout {
	t.Helper()

	store, _ := newTestStore(t)
	client, err := NewClient(baseURL, store)
	require.NoError(t, err)
	if session != nil {
		require.NoError(t, client.Session.Save(*session))
	}

	cart, err := NewCart(store)
	require.NoError(t, err)
	require.NoError(t, cart.Add(CartItem{ID: 1, Name: "Laptop", Price: 100}))
	require.NoError(t, cart.Add(CartItem{ID: 2, Name: "Phone", Price: 200}))

	return &Checkout{Client: client, Cart: cart}
}

func TestCheckoutState_LoginRequired(t *testing.T) {
	st := &serverState{}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, nil)
	state := co.State(context.Background())

	assert.Equal(t, StepLoginRequired, state.Step)
	assert.Equal(t, "/cart", state.ReturnTo)
	assert.Len(t, state.Items, 2, "items render in every step")
	assert.Equal(t, "$300.00", state.Total)
	assert.EqualValues(t, 0, st.tokenCalls.Load(), "no token fetch before login")
}

func TestCheckoutState_AddressRequired(t *testing.T) {
	st := &serverState{}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, &Session{
		User:  SessionUser{ID: 1, Name: "Alice"},
		Token: "tok",
	})
	state := co.State(context.Background())

	assert.Equal(t, StepAddressRequired, state.Step)
	assert.EqualValues(t, 0, st.tokenCalls.Load())
}

func TestCheckoutState_PaymentReady(t *testing.T) {
	st := &serverState{}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, &Session{
		User:  SessionUser{ID: 1, Name: "Alice", Address: "X St"},
		Token: "tok",
	})
	state := co.State(context.Background())

	assert.Equal(t, StepPaymentReady, state.Step)
	assert.Equal(t, "ct-123", state.ClientToken)
	assert.EqualValues(t, 1, st.tokenCalls.Load())
	assert.Equal(t, "tok", st.lastAuth, "raw token, no scheme prefix")
}

func TestCheckoutState_PaymentUnavailable(t *testing.T) {
	st := &serverState{tokenStatus: http.StatusInternalServerError}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, &Session{
		User:  SessionUser{ID: 1, Name: "Alice", Address: "X St"},
		Token: "tok",
	})
	state := co.State(context.Background())

	assert.Equal(t, StepPaymentUnavailable, state.Step)
	assert.Empty(t, state.ClientToken)
}

func TestCheckoutSubmit(t *testing.T) {
	st := &serverState{}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, &Session{
		User:  SessionUser{ID: 1, Name: "Alice", Address: "X St"},
		Token: "tok",
	})

	require.NoError(t, co.Submit(context.Background(), &fakeUI{nonce: "nonce-1"}))

	assert.EqualValues(t, 1, st.paymentCalls.Load())
	assert.Equal(t, "nonce-1", st.lastNonce)
	require.Len(t, st.lastCart, 2)
	assert.Equal(t, "Laptop", st.lastCart[0].Name)

	assert.Equal(t, 2, co.Cart.Len(), "cart is not cleared on success")
}

func TestCheckoutSubmit_NotReady(t *testing.T) {
	st := &serverState{}
	srv := newAPIServer(t, st)

	co := newCheckout(t, srv.URL, nil)

	err := co.Submit(context.Background(), &fakeUI{nonce: "nonce-1"})
	assert.ErrorIs(t, err, ErrNotReady)
	assert.EqualValues(t, 0, st.paymentCalls.Load())
}
