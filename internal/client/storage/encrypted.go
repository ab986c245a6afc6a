package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/cryptox"
)

// KeySalt holds the argon2 salt for EncryptedStore. It is stored in clear.
const KeySalt = "crypto.salt"

const saltSize = 16

// EncryptedStore wraps another Store and seals every value with AES-GCM under
// a key derived from a passphrase. The salt is generated on first use and
// persisted in the inner store.
type EncryptedStore struct {
	inner      Store
	passphrase []byte

	mu  sync.Mutex
	key []byte
}

func NewEncryptedStore(inner Store, passphrase string) *EncryptedStore {
	return &EncryptedStore{inner: inner, passphrase: []byte(passphrase)}
}

func (s *EncryptedStore) deriveKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	var salt []byte
	enc, ok, err := s.inner.Get(ctx, KeySalt)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, err = base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: salt: %v", ErrCorrupted, err)
		}
	} else {
		salt = common.GenerateRandByteArray(saltSize)
		if err := s.inner.Set(ctx, KeySalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, err
		}
	}

	s.key = cryptox.DeriveKey(s.passphrase, salt)
	return s.key, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	enc, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	k, err := s.deriveKey(ctx)
	if err != nil {
		return "", false, err
	}

	sealed, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrCorrupted, key, err)
	}
	plain, err := cryptox.Open(k, sealed)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrCorrupted, key, err)
	}
	return string(plain), true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	k, err := s.deriveKey(ctx)
	if err != nil {
		return err
	}
	sealed, err := cryptox.Seal(k, []byte(value))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *EncryptedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *EncryptedStore) RemoveAll(ctx context.Context, keys ...string) error {
	return RemoveAll(ctx, s.inner, keys...)
}
