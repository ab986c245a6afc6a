package cli

import (
	"fmt"
	"strings"
)

// getStatus renders the prompt decoration from the session state.
func (a *App) getStatus() string {
	var parts []string

	if u := a.session.CurrentUser(); u != nil {
		parts = append(parts, u.Username)
	} else if a.isLoggedIn() {
		parts = append(parts, "unknown user")
	} else {
		parts = append(parts, "guest")
	}

	st := a.session.Snapshot()
	switch {
	case st.Loading:
		parts = append(parts, "loading")
	case st.Refreshing:
		parts = append(parts, "refreshing")
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if st.Err != nil {
		parts = append(parts, "error: "+st.Err.Error())
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Status prints the session state in detail.
func (a *App) Status() error {
	st := a.session.Snapshot()

	fmt.Fprintf(a.out, "logged in:  %t\n", st.Authenticated())
	fmt.Fprintf(a.out, "refreshing: %t\n", st.Refreshing)
	fmt.Fprintf(a.out, "has refresh token: %t\n", st.RefreshToken != "")
	if st.Err != nil {
		fmt.Fprintf(a.out, "last error: %v\n", st.Err)
	}
	if m := a.Mode(); m != "" {
		fmt.Fprintf(a.out, "server:     %s\n", m)
	}
	return nil
}
