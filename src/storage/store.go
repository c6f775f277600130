// Package storage is the key-value layer sessions are persisted in.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing or expired key
var ErrNotFound = errors.New("key not found")

// Store holds opaque encoded values by key. Implementations must be safe for
// concurrent use; operations on different keys must not block each other for long.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete is idempotent
	Delete(ctx context.Context, key string) error
}
