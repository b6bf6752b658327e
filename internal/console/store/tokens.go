package store

import (
	"context"
	"errors"
	"fmt"
)

// SessionTokenKey is the credentials key the session token is kept under.
const SessionTokenKey = "session_token"

// Sealer encrypts values before they reach the database. *cryptox.Sealer
// satisfies it.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// TokenStore keeps the session token in Credentials, sealed when a Sealer is
// configured. It implements consolesdk.TokenStore.
//
// A token that cannot be opened, e.g. because the sealing key changed, reads
// as absent. The next SetToken or ClearToken overwrites it.
type TokenStore struct {
	creds  Credentials
	sealer Sealer
}

// NewTokenStore returns a TokenStore over creds. sealer may be nil, in which
// case the token is stored in plain text.
func NewTokenStore(creds Credentials, sealer Sealer) *TokenStore {
	return &TokenStore{creds: creds, sealer: sealer}
}

func (t *TokenStore) Token(ctx context.Context) (string, error) {
	value, err := t.creds.Get(ctx, SessionTokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	if t.sealer != nil {
		opened, err := t.sealer.Open(value)
		if err != nil {
			return "", nil
		}
		value = opened
	}
	return string(value), nil
}

func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return t.ClearToken(ctx)
	}

	value := []byte(token)
	if t.sealer != nil {
		sealed, err := t.sealer.Seal(value)
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		value = sealed
	}

	if err := t.creds.Put(ctx, SessionTokenKey, value); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (t *TokenStore) ClearToken(ctx context.Context) error {
	if err := t.creds.Delete(ctx, SessionTokenKey); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
