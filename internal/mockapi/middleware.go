package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/tokens"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/dmitrijs2005/gophsession/internal/shared"
	"github.com/labstack/echo/v4"
)

// claimsKey is where BearerAuth stores the decoded *tokens.Claims.
const claimsKey = "claims"

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, shared.ErrorResponse{Error: msg})
}

// BearerAuth rejects requests without a decodable, unexpired bearer token
// with 401. The signature segment is not checked.
func BearerAuth(codec *tokens.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(auth, common.BearerPrefix) {
				return unauthorized(c, "missing bearer token")
			}

			claims, err := codec.Decode(strings.TrimPrefix(auth, common.BearerPrefix))
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			if codec.Expired(claims) {
				return unauthorized(c, "token expired")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func claimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(claimsKey).(*tokens.Claims)
	return claims
}

// RequestLogger logs one line per request.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			log.Info(req.Context(), "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
