// Package mockapi is a stand-in resource server for local development. It
// answers 401 to requests whose bearer token is missing, undecodable or
// expired, which is what drives the client's refresh-and-retry path.
package mockapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/tokens"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg  *Config
	echo *echo.Echo
	log  logging.Logger
}

// NewServer builds the router. codec decides token validity; pass one with
// an injected clock in tests.
func NewServer(cfg *Config, codec *tokens.Codec, log logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(RequestLogger(log))

	e.GET("/ping", ping)

	g := e.Group("", BearerAuth(codec))
	g.GET("/me", me)
	g.GET("/chats", chats)

	return &Server{cfg: cfg, echo: e, log: log}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "mock api listening", "addr", s.cfg.Addr)
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.log.Info(ctx, "shutting down mock api")
	return s.echo.Shutdown(shCtx)
}
