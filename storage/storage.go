package storage

import (
	"context"
	"errors"
)

// ErrNotFound is an exported constant or variable used by the session client.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence collaborator for session state. Implementations
// must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
