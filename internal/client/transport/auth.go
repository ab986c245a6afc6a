package transport

import (
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

// AuthTransport is an http.RoundTripper that sends the session's bearer
// token and, on a 401, refreshes through the Coordinator and resends the
// request exactly once. Any other status, and any transport error, is
// returned untouched. A 401 on the resend is returned to the caller as is.
type AuthTransport struct {
	// Base performs the actual requests. Nil means http.DefaultTransport.
	Base        http.RoundTripper
	Coordinator *Coordinator
	Log         logging.Logger
}

func NewAuthTransport(base http.RoundTripper, c *Coordinator, log logging.Logger) *AuthTransport {
	return &AuthTransport{Base: base, Coordinator: c, Log: log}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) logger() logging.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logging.Discard()
}

// withToken clones req and sets the bearer header, or strips it when token
// is empty.
func withToken(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token == "" {
		r.Header.Del(common.AuthorizationHeaderName)
	} else {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return r
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	sent := t.Coordinator.AccessToken()
	resp, err := t.base().RoundTrip(withToken(req, sent))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// The request body was consumed by the first attempt.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		t.logger().Warn(ctx, "401 on a request with a non-replayable body, not retrying",
			"method", req.Method, "url", req.URL.String())
		return resp, nil
	}

	fresh, rerr := t.Coordinator.Refresh(ctx, sent)
	if rerr != nil {
		drain(resp)
		return nil, rerr
	}

	retry := withToken(req, fresh)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			drain(resp)
			return nil, err
		}
		retry.Body = body
	}

	drain(resp)
	t.logger().Debug(ctx, "retrying after refresh", "method", req.Method, "url", req.URL.String())
	return t.base().RoundTrip(retry)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
