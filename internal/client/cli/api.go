package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "pong")
	return nil
}

// Me asks the server who the current token belongs to.
func (a *App) Me(ctx context.Context) error {
	me, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s), token valid until %s\n", me.Username, me.ID, me.ExpiresAt.Local().Format("15:04:05"))
	return nil
}

func (a *App) Chats(ctx context.Context) error {
	chats, err := a.api.Chats(ctx)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Fprintln(a.out, "No chats")
		return nil
	}
	for _, c := range chats {
		fmt.Fprintf(a.out, "%s\t%s\n", c.ID, c.Name)
	}
	return nil
}

// describe turns an error into a message for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrRefreshFailed):
		return "session expired, please log in again"
	case errors.Is(err, common.ErrNoRefreshToken):
		return "not logged in"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized"
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, common.ErrNetwork):
		return "server unavailable"
	}
	return err.Error()
}
