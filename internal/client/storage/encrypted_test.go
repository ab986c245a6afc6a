package storage

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptedStore_ValuesAreSealed(t *testing.T) {
	inner := NewMemoryStore()
	s := NewEncryptedStore(inner, "pw")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "plain-token"))

	raw, ok, err := inner.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, raw, "plain-token")

	_, ok, err = inner.Get(ctx, KeySalt)
	require.NoError(t, err)
	require.True(t, ok, "salt must be persisted")
}

func TestEncryptedStore_ReopenWithSamePassphrase(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, NewEncryptedStore(inner, "pw").Set(ctx, KeyRefreshToken, "r1"))

	v, ok, err := NewEncryptedStore(inner, "pw").Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "r1", v)

	_, _, err = NewEncryptedStore(inner, "wrong").Get(ctx, KeyRefreshToken)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestEncryptedStore_RejectsTampering(t *testing.T) {
	inner := NewMemoryStore()
	s := NewEncryptedStore(inner, "pw")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "tok"))

	raw, _, _ := inner.Get(ctx, KeyAccessToken)
	b, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	b[len(b)-1] ^= 0x01
	require.NoError(t, inner.Set(ctx, KeyAccessToken, base64.StdEncoding.EncodeToString(b)))

	_, _, err = s.Get(ctx, KeyAccessToken)
	require.ErrorIs(t, err, ErrCorrupted)

	require.NoError(t, inner.Set(ctx, KeyAccessToken, "%%% not base64"))
	_, _, err = s.Get(ctx, KeyAccessToken)
	require.ErrorIs(t, err, ErrCorrupted)
}
