package consolesdk

import (
	"context"
	"sync"
)

// TokenStore persists the single credential token of the console. Token
// returns "" and no error when nothing is stored. ClearToken on an empty store
// is not an error.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process memory. It is the default store
// and is what the tests use.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore returns a store pre-loaded with token, which may be "".
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Navigator sends the operator back to the login entry point. The web console
// did this with a hard redirect; the CLI prints a prompt.
type Navigator interface {
	RedirectToLogin(ctx context.Context, reason error)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, reason error)

func (f NavigatorFunc) RedirectToLogin(ctx context.Context, reason error) { f(ctx, reason) }

type noopNavigator struct{}

func (noopNavigator) RedirectToLogin(context.Context, error) {}
