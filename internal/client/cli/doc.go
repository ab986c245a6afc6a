// Package cli provides the interactive gophsession command-line client.
//
// It wires configuration, token storage, the session manager, the
// auth-aware API client and a REPL. The REPL renders what the session
// reports (user, refreshing, last error) in its prompt and exposes commands
// to register, log in, inspect and edit the profile, call the API, force a
// refresh and log out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
