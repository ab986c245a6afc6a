package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/storage"
	"github.com/dmitrijs2005/gophsession/internal/client/tokens"
	"github.com/dmitrijs2005/gophsession/internal/client/users"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

// refreshTokenBytes is the entropy of generated refresh tokens.
const refreshTokenBytes = 16

const refreshTokenPrefix = "refresh-token-"

type Manager struct {
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State

	registry *users.Registry
	codec    *tokens.Codec
	store    storage.Store
	log      logging.Logger
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		ttl: DefaultAccessTokenTTL,
		now: time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	if m.registry == nil {
		m.registry = users.NewRegistry()
	}
	if m.store == nil {
		m.store = storage.NewMemoryStore()
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	m.codec = tokens.NewCodec(tokens.WithClock(m.now))
	return m
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// AccessToken returns the current access token, or "" when logged out.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AccessToken
}

func (m *Manager) update(fn func(s *State)) {
	m.mu.Lock()
	fn(&m.state)
	m.mu.Unlock()
}

// Registry exposes the user registry for read-only lookups.
func (m *Manager) Registry() *users.Registry {
	return m.registry
}

// Register creates a new account. It does not log the user in.
func (m *Manager) Register(ctx context.Context, nu users.NewUser) (*users.User, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.update(func(s *State) { s.Loading, s.Err = true, nil })
	defer m.update(func(s *State) { s.Loading = false })

	u, err := m.registry.Register(nu)
	if err != nil {
		m.update(func(s *State) { s.Err = err })
		m.log.Info(ctx, "registration rejected", "username", nu.Username, "error", err)
		return nil, err
	}

	m.persistUsers(ctx)
	m.log.Info(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies credentials and issues a fresh token pair. On failure the
// previous tokens, if any, are left as they were.
func (m *Manager) Login(ctx context.Context, c Credentials) (*AuthTokens, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.update(func(s *State) { s.Loading, s.Err = true, nil })
	defer m.update(func(s *State) { s.Loading = false })

	fail := func(err error) (*AuthTokens, error) {
		m.update(func(s *State) { s.Err = err })
		return nil, err
	}

	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return fail(common.ErrInvalidCredentials)
	}

	u := m.registry.FindByUsernameOrEmail(c.Username)
	if !m.registry.VerifyPassword(u, c.Password) {
		m.log.Info(ctx, "login failed", "username", c.Username)
		return fail(common.ErrInvalidCredentials)
	}

	access, err := m.codec.Encode(tokens.Subject{ID: u.ID, Username: u.Username}, m.ttl)
	if err != nil {
		return fail(fmt.Errorf("error issuing access token: %w", err))
	}
	rnd, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return fail(fmt.Errorf("error issuing refresh token: %w", err))
	}
	pair := &AuthTokens{AccessToken: access, RefreshToken: refreshTokenPrefix + rnd}

	m.update(func(s *State) {
		s.AccessToken = pair.AccessToken
		s.RefreshToken = pair.RefreshToken
	})
	m.persist(ctx, storage.KeyAccessToken, pair.AccessToken)
	m.persist(ctx, storage.KeyRefreshToken, pair.RefreshToken)

	m.log.Info(ctx, "logged in", "user_id", u.ID)
	return pair, nil
}

// Refresh issues a new access token for the subject of the current one,
// which may already be expired. It fails with common.ErrNoRefreshToken when
// no refresh token is held; every other failure is wrapped with
// common.ErrRefreshFailed and clears the session. A cancelled ctx fails the
// refresh without touching state.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	cur := m.Snapshot()
	if cur.RefreshToken == "" {
		return "", common.ErrNoRefreshToken
	}

	m.update(func(s *State) { s.Refreshing = true })
	defer m.update(func(s *State) { s.Refreshing = false })

	token, err := m.reissue(ctx, cur.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			m.log.Warn(ctx, "token refresh abandoned", "error", err)
			return "", fmt.Errorf("%w: %w", common.ErrRefreshFailed, err)
		}

		m.log.Error(ctx, "token refresh failed, clearing session", "error", err)
		m.update(func(s *State) {
			s.AccessToken, s.RefreshToken, s.Err = "", "", err
		})
		m.clearStoredTokens(ctx)
		return "", fmt.Errorf("%w: %w", common.ErrRefreshFailed, err)
	}

	m.update(func(s *State) { s.AccessToken = token })
	m.persist(ctx, storage.KeyAccessToken, token)

	m.log.Debug(ctx, "access token refreshed")
	return token, nil
}

func (m *Manager) reissue(ctx context.Context, access string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if access == "" {
		return "", fmt.Errorf("%w: no access token to refresh", common.ErrMalformedToken)
	}

	claims, err := m.codec.Decode(access)
	if err != nil {
		return "", err
	}

	token, err := m.codec.Renew(claims, m.ttl)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Logout clears both tokens and any error. It is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.update(func(s *State) {
		s.AccessToken, s.RefreshToken, s.Err = "", "", nil
	})
	m.clearStoredTokens(ctx)
	m.log.Info(ctx, "logged out")
}

func (m *Manager) ClearError() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.update(func(s *State) { s.Err = nil })
}

// CurrentUser returns the user the access token was issued for, or nil when
// logged out, when the token cannot be decoded, or when the user is unknown.
func (m *Manager) CurrentUser() *users.User {
	access := m.AccessToken()
	if access == "" {
		return nil
	}
	claims, err := m.codec.Decode(access)
	if err != nil {
		return nil
	}
	return m.registry.FindByID(claims.UserID)
}

// UpdateProfile edits the profile of user id.
func (m *Manager) UpdateProfile(ctx context.Context, id string, upd users.ProfileUpdate) (*users.User, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.update(func(s *State) { s.Loading, s.Err = true, nil })
	defer m.update(func(s *State) { s.Loading = false })

	u, err := m.registry.UpdateProfile(id, upd)
	if err != nil {
		m.update(func(s *State) { s.Err = err })
		return nil, err
	}
	m.persistUsers(ctx)
	return u, nil
}

// Restore rehydrates the registry and tokens from the store. A stored access
// token that cannot be decoded is discarded.
func (m *Manager) Restore(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	raw, ok, err := m.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return fmt.Errorf("error loading users: %w", err)
	}
	if ok {
		var records []users.User
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			m.log.Warn(ctx, "stored users are unreadable, ignoring", "error", err)
		} else {
			n := m.registry.Restore(records)
			m.log.Debug(ctx, "users restored", "count", n)
		}
	}

	access, _, err := m.store.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("error loading access token: %w", err)
	}
	refresh, _, err := m.store.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("error loading refresh token: %w", err)
	}

	if access != "" {
		if _, err := m.codec.Decode(access); err != nil {
			m.log.Warn(ctx, "stored access token is malformed, discarding", "error", err)
			access = ""
			if err := m.store.Remove(ctx, storage.KeyAccessToken); err != nil {
				m.log.Warn(ctx, "error removing access token", "error", err)
			}
		}
	}

	m.update(func(s *State) {
		s.AccessToken, s.RefreshToken, s.Err = access, refresh, nil
	})
	return nil
}

// persist failures are logged only: the in-memory session stays usable.
func (m *Manager) persist(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.log.Warn(ctx, "error persisting session value", "key", key, "error", err)
	}
}

func (m *Manager) persistUsers(ctx context.Context) {
	b, err := json.Marshal(m.registry.Snapshot())
	if err != nil {
		m.log.Error(ctx, "error encoding users", "error", err)
		return
	}
	m.persist(ctx, storage.KeyUsers, string(b))
}

func (m *Manager) clearStoredTokens(ctx context.Context) {
	// Stored tokens must go even if the caller is already cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := storage.RemoveAll(ctx, m.store, storage.KeyAccessToken, storage.KeyRefreshToken); err != nil {
		m.log.Warn(ctx, "error removing stored tokens", "error", err)
	}
}

// IsAuthError reports whether err means the session cannot continue
// without a new login.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrNoRefreshToken) ||
		errors.Is(err, common.ErrRefreshFailed) ||
		errors.Is(err, common.ErrInvalidCredentials)
}
