package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/session"
	"github.com/dmitrijs2005/gophsession/internal/client/users"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

// getSimpleText, getOptionalText and getPassword are indirections used to
// facilitate testing.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
)

var errNotLoggedIn = errors.New("not logged in")

// Register prompts for username, email and password and creates an account.
// It does not log in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Register(ctx, users.NewUser{
		Username: username,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. Use 'login' to sign in.\n", u.Username)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.Login(ctx, session.Credentials{Username: username, Password: string(password)}); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Refresh renews the access token on demand.
func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

// WhoAmI prints the locally known profile of the current user.
func (a *App) WhoAmI(_ context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		return errNotLoggedIn
	}
	printUser(a, u)
	return nil
}

// EditProfile prompts for each profile field; empty answers keep the value.
func (a *App) EditProfile(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		return errNotLoggedIn
	}

	var upd users.ProfileUpdate
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"Email", u.Email, &upd.Email},
		{"First name", u.Profile.FirstName, &upd.FirstName},
		{"Last name", u.Profile.LastName, &upd.LastName},
		{"Phone", u.Profile.Phone, &upd.Phone},
		{"Address", u.Profile.Address, &upd.Address},
	}
	for _, f := range fields {
		v, err := getOptionalText(a.reader, f.prompt, f.current, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	g, err := getOptionalText(a.reader, "Gender (male, female, other, prefer not to say)", string(u.Profile.Gender), a.out)
	if err != nil {
		return err
	}
	if g != nil {
		gender := users.Gender(*g)
		upd.Gender = &gender
	}

	updated, err := a.session.UpdateProfile(ctx, u.ID, upd)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Profile updated")
	printUser(a, updated)
	return nil
}

func printUser(a *App, u *users.User) {
	fmt.Fprintf(a.out, "id:       %s\n", u.ID)
	fmt.Fprintf(a.out, "username: %s\n", u.Username)
	if u.Email != "" {
		fmt.Fprintf(a.out, "email:    %s\n", u.Email)
	}
	p := u.Profile
	if name := joinNonEmpty(p.FirstName, p.LastName); name != "" {
		fmt.Fprintf(a.out, "name:     %s\n", name)
	}
	if p.Phone != "" {
		fmt.Fprintf(a.out, "phone:    %s\n", p.Phone)
	}
	if p.Address != "" {
		fmt.Fprintf(a.out, "address:  %s\n", p.Address)
	}
	if p.Gender != "" {
		fmt.Fprintf(a.out, "gender:   %s\n", p.Gender)
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
