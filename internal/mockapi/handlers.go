package mockapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophsession/internal/shared"
	"github.com/labstack/echo/v4"
)

var sampleChats = []shared.Chat{
	{ID: "1", Name: "alpha"},
	{ID: "2", Name: "beta"},
}

func ping(c echo.Context) error {
	return c.JSON(http.StatusOK, shared.PingResponse{Status: shared.StatusOK})
}

func me(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return unauthorized(c, "missing claims")
	}
	return c.JSON(http.StatusOK, shared.Me{
		ID:        claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAtTime().UTC(),
	})
}

func chats(c echo.Context) error {
	return c.JSON(http.StatusOK, sampleChats)
}
