package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/netx"
	"github.com/dmitrijs2005/gophsession/internal/shared"
)

// Client is the set of API calls used by the CLI.
type Client interface {
	Ping(ctx context.Context) error
	Me(ctx context.Context) (*shared.Me, error)
	Chats(ctx context.Context) ([]shared.Chat, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API at baseURL. rt is normally a
// *transport.AuthTransport; timeout bounds each call including its retry.
func NewHTTPClient(baseURL string, rt http.RoundTripper, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Transport: rt, Timeout: timeout},
	}, nil
}

// Do performs method on path relative to the base URL. in and out are JSON
// bodies and may be nil.
func (c *HTTPClient) Do(ctx context.Context, method, path string, in, out any) error {
	err := netx.DoJSON(ctx, c.http, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), in, out)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, common.ErrRefreshFailed) {
		return err
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnauthorized, se)
		case se.Code >= 500:
			return fmt.Errorf("%w: %v", ErrUnavailable, se)
		default:
			return fmt.Errorf("%w: %v", ErrBadResponse, se)
		}
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %v", common.ErrNetwork, ue.Err)
	}

	return err
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp shared.PingResponse
	if err := c.Do(ctx, http.MethodGet, "/ping", nil, &resp); err != nil {
		return err
	}
	if resp.Status != shared.StatusOK {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*shared.Me, error) {
	var me shared.Me
	if err := c.Do(ctx, http.MethodGet, "/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (c *HTTPClient) Chats(ctx context.Context) ([]shared.Chat, error) {
	var chats []shared.Chat
	if err := c.Do(ctx, http.MethodGet, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}
