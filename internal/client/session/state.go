package session

// State is a point-in-time copy of the session. At most one of Loading and
// Refreshing is true.
type State struct {
	AccessToken  string
	RefreshToken string
	Loading      bool
	Refreshing   bool
	Err          error
}

// Authenticated reports whether an access token is held.
func (s State) Authenticated() bool {
	return s.AccessToken != ""
}

// Credentials is the login input. Username may also be an email.
type Credentials struct {
	Username string
	Password string
}

// AuthTokens is the result of a successful login.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
}
