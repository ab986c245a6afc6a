// Package tokens implements the three-segment access token used by the
// session layer: base64url(JSON header).base64url(JSON claims).signature.
//
// The signature segment is a constant placeholder. Tokens are never signed or
// verified; a deployment that needs integrity swaps in a real signing method
// without changing the segment layout.
package tokens

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PlaceholderSignature is appended as the third segment of every token.
const PlaceholderSignature = "fake-signature"

// Subject identifies the user a token is issued for.
type Subject struct {
	ID       string
	Username string
}

// Claims is the decoded token payload: registered iat/exp/sub plus the
// user's id and username.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// Subject returns the identity carried by the claims.
func (c *Claims) Subject() Subject {
	return Subject{ID: c.UserID, Username: c.Username}
}

// IssuedAtTime returns iat as a time.Time.
func (c *Claims) IssuedAtTime() time.Time {
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp as a time.Time.
func (c *Claims) ExpiresAtTime() time.Time {
	return c.ExpiresAt.Time
}

// IsExpired reports whether claims are no longer valid at now.
func IsExpired(c *Claims, now time.Time) bool {
	return !now.Before(c.ExpiresAtTime())
}

// Codec encodes and decodes tokens. It is stateless apart from its clock and
// safe for concurrent use.
type Codec struct {
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Codec)

// WithClock replaces time.Now, used for iat/exp and Expired.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now, parser: jwt.NewParser()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Encode issues a token for s valid for ttl starting now. Timestamps have
// one-second resolution; every token carries a unique jti, so two tokens
// issued in the same second still differ.
func (c *Codec) Encode(s Subject, ttl time.Duration) (string, error) {
	return c.encode(s, c.now(), ttl)
}

// Renew issues a successor of prev for the same subject. Its iat is at least
// one second after prev's and its exp is strictly later than prev's, even
// when called within the same second.
func (c *Codec) Renew(prev *Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive, got %s", common.ErrValidation, ttl)
	}

	iat := c.now().Truncate(time.Second)
	if floor := prev.IssuedAtTime().Add(time.Second); iat.Before(floor) {
		iat = floor
	}
	if prevExp := prev.ExpiresAtTime(); !iat.Add(ttl).After(prevExp) {
		iat = prevExp.Add(time.Second - ttl)
	}

	return c.encode(prev.Subject(), iat, ttl)
}

func (c *Codec) encode(s Subject, now time.Time, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive, got %s", common.ErrValidation, ttl)
	}
	if s.ID == "" {
		return "", fmt.Errorf("%w: empty subject id", common.ErrValidation)
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   s.ID,
		Username: s.Username,
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SigningString()
	if err != nil {
		return "", fmt.Errorf("error encoding token: %w", err)
	}

	return unsigned + "." + PlaceholderSignature, nil
}

// Decode parses token without checking its signature or its expiry, so a
// refresh can still read the subject out of a stale token.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}

	if claims.UserID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", common.ErrMalformedToken)
	}
	if !claims.ExpiresAtTime().After(claims.IssuedAtTime()) {
		return nil, fmt.Errorf("%w: exp must be after iat", common.ErrMalformedToken)
	}

	return claims, nil
}

// Expired reports whether claims are expired according to the codec clock.
func (c *Codec) Expired(claims *Claims) bool {
	return IsExpired(claims, c.now())
}
