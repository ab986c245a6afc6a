// Package storage persists session secrets between runs.
//
// Every backend implements Store, a flat get/set/remove contract over string
// keys and values. Values written by the session manager are tokens and a
// JSON snapshot of the user registry; backends never interpret them.
package storage

import (
	"context"
	"errors"
)

const (
	KeyAccessToken  = "auth.access_token"
	KeyRefreshToken = "auth.refresh_token"
	KeyUsers        = "auth.users"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrCorrupted      = errors.New("stored value is corrupted")
)

// Store is the secure storage contract. Get reports ok=false for a key that
// was never set or has been removed; removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// batchRemover is implemented by backends that can drop several keys at once.
type batchRemover interface {
	RemoveAll(ctx context.Context, keys ...string) error
}

// RemoveAll removes keys from s, atomically when the backend supports it.
func RemoveAll(ctx context.Context, s Store, keys ...string) error {
	if br, ok := s.(batchRemover); ok {
		return br.RemoveAll(ctx, keys...)
	}
	var errs []error
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
