package storecli

const authKey = "auth"

type SessionUser struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// Session is the {user, token} envelope written at login and restored on
// application start.
type Session struct {
	User  SessionUser `json:"user"`
	Token string      `json:"token"`
}

type SessionHolder struct {
	store   *Store
	current *Session
}

func NewSessionHolder(store *Store) (*SessionHolder, error) {
	h := &SessionHolder{store: store}
	var s Session
	ok, err := store.Get(authKey, &s)
	if err != nil {
		return nil, err
	}
	if ok {
		h.current = &s
	}
	return h, nil
}

func (h *SessionHolder) Current() *Session {
	return h.current
}

func (h *SessionHolder) Token() string {
	if h.current == nil {
		return ""
	}
	return h.current.Token
}

func (h *SessionHolder) Save(s Session) error {
	h.current = &s
	return h.store.Set(authKey, s)
}

// Clear is the whole of logout: tokens are stateless, so the server is
// not involved.
func (h *SessionHolder) Clear() error {
	h.current = nil
	return h.store.Delete(authKey)
}
