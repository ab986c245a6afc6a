// Package client is the API client for the chat backend.
//
// # Overview
//
// HTTPClient issues JSON requests through an http.Client whose transport is
// a transport.AuthTransport, so every call carries the session's bearer
// token and survives an expired access token with a single transparent
// refresh and retry.
//
// # Error Handling
//
// Outcomes are reported as sentinel errors matched with errors.Is:
// ErrUnauthorized for 401/403 after the retry, ErrUnavailable for 5xx,
// common.ErrRefreshFailed when the session could not be renewed, and
// common.ErrNetwork for transport failures.
package client
