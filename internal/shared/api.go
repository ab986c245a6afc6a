// Package shared holds the JSON bodies exchanged between the API client and
// the mock resource server.
package shared

import "time"

type PingResponse struct {
	Status string `json:"status"`
}

// Me is returned by GET /me for the token's subject.
type Me struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Chat struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Media string `json:"media,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const StatusOK = "OK"
