package tokens

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	subjects := []Subject{
		{ID: "user-1", Username: "bob"},
		{ID: "user-ü", Username: "jürgen+/=?"},
	}
	ttls := []time.Duration{time.Second, 60 * time.Second, 24 * time.Hour}

	c := NewCodec(WithClock(fixedClock(time.Unix(1_700_000_000, 700_000_000))))

	for _, s := range subjects {
		for _, ttl := range ttls {
			tok, err := c.Encode(s, ttl)
			require.NoError(t, err)

			claims, err := c.Decode(tok)
			require.NoError(t, err)

			assert.Equal(t, s, claims.Subject())
			assert.Equal(t, ttl, claims.ExpiresAtTime().Sub(claims.IssuedAtTime()))
		}
	}
}

func TestEncode_WireFormat(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := NewCodec(WithClock(fixedClock(now)))

	tok, err := c.Encode(Subject{ID: "user-1", Username: "carol"}, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	assert.Equal(t, PlaceholderSignature, parts[2])
	for _, p := range parts[:2] {
		assert.NotContains(t, p, "=")
		assert.NotContains(t, p, "+")
		assert.NotContains(t, p, "/")
	}

	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]string
	require.NoError(t, json.Unmarshal(hb, &header))
	assert.Equal(t, map[string]string{"alg": "HS256", "typ": "JWT"}, header)

	pb, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(pb, &payload))
	assert.Equal(t, "user-1", payload["id"])
	assert.Equal(t, "carol", payload["username"])
	assert.EqualValues(t, now.Unix(), payload["iat"])
	assert.EqualValues(t, now.Add(time.Minute).Unix(), payload["exp"])
}

func TestEncode_RejectsNonPositiveTTL(t *testing.T) {
	t.Parallel()

	c := NewCodec()
	_, err := c.Encode(Subject{ID: "u"}, 0)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = c.Encode(Subject{ID: "u"}, -time.Second)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = c.Encode(Subject{}, time.Second)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := NewCodec()
	good, err := c.Encode(Subject{ID: "u", Username: "n"}, time.Minute)
	require.NoError(t, err)
	parts := strings.Split(good, ".")

	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))

	cases := map[string]string{
		"empty":            "",
		"one segment":      "abc",
		"two segments":     parts[0] + "." + parts[1],
		"bad base64":       parts[0] + ".!!!***." + PlaceholderSignature,
		"payload not json": parts[0] + "." + notJSON + "." + PlaceholderSignature,
		"header not json":  notJSON + "." + parts[1] + "." + PlaceholderSignature,
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(tok)
			require.ErrorIs(t, err, common.ErrMalformedToken)
		})
	}
}

func TestDecode_MissingClaims(t *testing.T) {
	t.Parallel()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"username":"x"}`))

	_, err := NewCodec().Decode(header + "." + payload + "." + PlaceholderSignature)
	require.ErrorIs(t, err, common.ErrMalformedToken)
}

func TestDecode_DoesNotRejectExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	tok, err := NewCodec(WithClock(fixedClock(past))).Encode(Subject{ID: "u1", Username: "dave"}, time.Minute)
	require.NoError(t, err)

	c := NewCodec()
	claims, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.True(t, c.Expired(claims))
}

func TestIsExpired_Boundary(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := NewCodec(WithClock(fixedClock(now)))
	tok, err := c.Encode(Subject{ID: "u"}, time.Minute)
	require.NoError(t, err)
	claims, err := c.Decode(tok)
	require.NoError(t, err)

	assert.False(t, IsExpired(claims, now))
	assert.False(t, IsExpired(claims, now.Add(59*time.Second)))
	assert.True(t, IsExpired(claims, now.Add(time.Minute)))
	assert.True(t, IsExpired(claims, now.Add(time.Hour)))
}

func TestEncode_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()

	c := NewCodec(WithClock(fixedClock(time.Unix(1_700_000_000, 0))))
	s := Subject{ID: "user-1", Username: "carol"}

	a, err := c.Encode(s, time.Minute)
	require.NoError(t, err)
	b, err := c.Encode(s, time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ca, err := c.Decode(a)
	require.NoError(t, err)
	cb, err := c.Decode(b)
	require.NoError(t, err)
	assert.NotEmpty(t, ca.ID)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestRenew_StrictlyLaterWithinSameSecond(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 250_000_000)
	c := NewCodec(WithClock(fixedClock(now)))

	tok, err := c.Encode(Subject{ID: "user-1", Username: "carol"}, time.Minute)
	require.NoError(t, err)
	prev, err := c.Decode(tok)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		next, err := c.Renew(prev, time.Minute)
		require.NoError(t, err)
		require.NotEqual(t, tok, next)

		claims, err := c.Decode(next)
		require.NoError(t, err)
		assert.Equal(t, prev.Subject(), claims.Subject())
		assert.True(t, claims.ExpiresAtTime().After(prev.ExpiresAtTime()))
		assert.True(t, claims.IssuedAtTime().After(prev.IssuedAtTime()))

		tok, prev = next, claims
	}
}

func TestRenew_UsesClockWhenLater(t *testing.T) {
	t.Parallel()

	start := time.Unix(1_700_000_000, 0)
	tok, err := NewCodec(WithClock(fixedClock(start))).Encode(Subject{ID: "user-1"}, time.Minute)
	require.NoError(t, err)

	later := NewCodec(WithClock(fixedClock(start.Add(90 * time.Second))))
	prev, err := later.Decode(tok)
	require.NoError(t, err)

	next, err := later.Renew(prev, time.Minute)
	require.NoError(t, err)
	claims, err := later.Decode(next)
	require.NoError(t, err)

	assert.Equal(t, start.Add(90*time.Second).Unix(), claims.IssuedAtTime().Unix())
	assert.Equal(t, start.Add(150*time.Second).Unix(), claims.ExpiresAtTime().Unix())
}

func TestRenew_ShorterTTLStillMovesExpiryForward(t *testing.T) {
	t.Parallel()

	c := NewCodec(WithClock(fixedClock(time.Unix(1_700_000_000, 0))))
	tok, err := c.Encode(Subject{ID: "user-1"}, time.Hour)
	require.NoError(t, err)
	prev, err := c.Decode(tok)
	require.NoError(t, err)

	next, err := c.Renew(prev, time.Minute)
	require.NoError(t, err)
	claims, err := c.Decode(next)
	require.NoError(t, err)

	assert.True(t, claims.ExpiresAtTime().After(prev.ExpiresAtTime()))
	assert.Equal(t, time.Minute, claims.ExpiresAtTime().Sub(claims.IssuedAtTime()))

	_, err = c.Renew(prev, 0)
	require.ErrorIs(t, err, common.ErrValidation)
}
