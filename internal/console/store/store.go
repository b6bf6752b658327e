package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Store is the local state of the console. Only the sqlite driver exists
// today; the interface keeps the app independent of it.
type Store interface {
	Credentials() Credentials

	ApplyMigrations() error

	// Close releases the underlying database.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Credentials is a small key/value table for secrets such as the session
// token. Values are opaque bytes; sealing happens above this layer.
type Credentials interface {
	// Get returns ErrNotFound when key is not set.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the value of key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
