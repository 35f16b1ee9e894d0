package storecli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the storefront API. The session token is attached to
// each outgoing request explicitly; no shared default headers are mutated
// anywhere.
type Client struct {
	baseURL    string
	httpClient *http.Client
	Session    *SessionHolder
}

func NewClient(baseURL string, store *Store) (*Client, error) {
	session, err := NewSessionHolder(store)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Session: session,
	}, nil
}

func (c *Client) Authenticated() bool {
	return c.Session.Token() != ""
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// The server reads the raw header value as the token, no scheme prefix.
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg == "" {
			msg = string(raw)
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (bool, string, error) {
	var resp registerResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", in, &resp); err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// Login saves the returned session envelope on success, which also
// persists it for the next start.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp struct {
		User  SessionUser `json:"user"`
		Token string      `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return nil, err
	}

	s := Session{User: resp.User, Token: resp.Token}
	if err := c.Session.Save(s); err != nil {
		return nil, err
	}
	return c.Session.Current(), nil
}

func (c *Client) Logout() error {
	return c.Session.Clear()
}

func (c *Client) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	body := map[string]string{
		"email":       email,
		"answer":      answer,
		"newPassword": newPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/forgot-password", body, nil)
}

// ProfileUpdate uses pointers so that "leave unchanged" and "clear" stay
// distinguishable on the wire.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*SessionUser, error) {
	var resp struct {
		UpdatedUser SessionUser `json:"updated_user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/auth/profile", upd, &resp); err != nil {
		return nil, err
	}

	if cur := c.Session.Current(); cur != nil {
		if err := c.Session.Save(Session{User: resp.UpdatedUser, Token: cur.Token}); err != nil {
			return nil, err
		}
	}
	return &resp.UpdatedUser, nil
}

type OrderProductView struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type OrderView struct {
	ID      uint   `json:"id"`
	Status  string `json:"status"`
	Payment struct {
		Success bool    `json:"success"`
		Amount  float64 `json:"amount"`
	} `json:"payment"`
	Products  []OrderProductView `json:"products"`
	CreatedAt time.Time          `json:"created_at"`
}

func (c *Client) Orders(ctx context.Context) ([]OrderView, error) {
	var orders []OrderView
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) PaymentToken(ctx context.Context) (string, error) {
	var resp struct {
		ClientToken string `json:"clientToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/product/braintree/token", nil, &resp); err != nil {
		return "", err
	}
	return resp.ClientToken, nil
}

func (c *Client) Pay(ctx context.Context, items []CartItem, nonce string) error {
	body := map[string]any{"cart": items, "nonce": nonce}
	return c.do(ctx, http.MethodPost, "/api/v1/product/braintree/payment", body, nil)
}
