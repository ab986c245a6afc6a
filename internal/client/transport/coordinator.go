// Package transport attaches session credentials to outbound HTTP requests
// and recovers from expired access tokens.
//
// AuthTransport retries a request at most once after a 401. The refresh that
// precedes the retry goes through a Coordinator, which guarantees that at most
// one refresh is in flight no matter how many requests hit a 401 together.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout bounds a single refresh call.
const DefaultRefreshTimeout = 10 * time.Second

// TokenSource reports the current access token ("" when logged out).
type TokenSource interface {
	AccessToken() string
}

// Refresher obtains a new access token and stores it in the session before
// returning it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// SessionBackend is what a Coordinator needs from the session layer.
type SessionBackend interface {
	TokenSource
	Refresher
}

type CoordinatorOption func(*Coordinator)

// WithRefreshTimeout bounds each refresh. Non-positive disables the bound.
func WithRefreshTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

// WithOnRefreshFailure registers fn to run once per failed refresh, e.g. to
// force a logout.
func WithOnRefreshFailure(fn func(ctx context.Context, err error)) CoordinatorOption {
	return func(c *Coordinator) { c.onFailure = fn }
}

func WithCoordinatorLogger(l logging.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.log = l }
}

// Coordinator deduplicates concurrent refreshes.
type Coordinator struct {
	session   SessionBackend
	group     singleflight.Group
	timeout   time.Duration
	onFailure func(ctx context.Context, err error)
	log       logging.Logger
}

func NewCoordinator(session SessionBackend, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		session: session,
		timeout: DefaultRefreshTimeout,
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AccessToken returns the session's current token.
func (c *Coordinator) AccessToken() string {
	return c.session.AccessToken()
}

const refreshKey = "refresh"

// Refresh returns an access token newer than stale, the token a request was
// rejected with. If the session already holds a different token, another
// caller has refreshed and that token is returned immediately. Otherwise the
// caller joins the single in-flight refresh, starting one if none exists.
//
// The refresh itself runs detached from ctx and is bounded by the refresh
// timeout, so a cancelled leader does not fail its followers. Each caller
// still stops waiting when its own ctx is done.
func (c *Coordinator) Refresh(ctx context.Context, stale string) (string, error) {
	if cur := c.session.AccessToken(); cur != "" && cur != stale {
		return cur, nil
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", common.ErrRefreshFailed, ctx.Err())
	}
}

func (c *Coordinator) doRefresh(ctx context.Context, stale string) (string, error) {
	// A refresh that completed between the caller's check and this flight
	// starting already produced a usable token.
	if cur := c.session.AccessToken(); cur != "" && cur != stale {
		return cur, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tok, err := c.session.Refresh(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrRefreshFailed) {
			err = fmt.Errorf("%w: %w", common.ErrRefreshFailed, err)
		}
		c.log.Warn(ctx, "refresh failed", "error", err)
		if c.onFailure != nil {
			c.onFailure(ctx, err)
		}
		return "", err
	}

	c.log.Debug(ctx, "refresh completed")
	return tok, nil
}
