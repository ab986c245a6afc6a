// Package users is the in-memory user registry owned by the session manager.
//
// The registry enforces case-insensitive uniqueness of usernames and emails
// across both namespaces (a login identifier may be either), and performs
// check-then-insert as one step under its lock so concurrent registrations of
// the same name cannot both succeed. Records are never deleted.
package users

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/google/uuid"
)

type Registry struct {
	mu    sync.RWMutex
	users []*User
	byID  map[string]*User
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*User)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// taken reports whether identifier collides with any username or email,
// ignoring the record with id skipID. Caller holds the lock.
func (r *Registry) taken(identifier, skipID string) bool {
	n := normalize(identifier)
	if n == "" {
		return false
	}
	for _, u := range r.users {
		if u.ID == skipID {
			continue
		}
		if normalize(u.Username) == n || normalize(u.Email) == n {
			return true
		}
	}
	return false
}

// Register validates nu and stores a new record with a freshly allocated id.
func (r *Registry) Register(nu NewUser) (*User, error) {
	username := strings.TrimSpace(nu.Username)
	email := strings.TrimSpace(nu.Email)

	if username == "" || nu.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if !nu.Profile.Gender.Valid() {
		return nil, fmt.Errorf("%w: unknown gender %q", common.ErrValidation, nu.Profile.Gender)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(username, "") || r.taken(email, "") {
		return nil, common.ErrDuplicateUser
	}
	u := &User{
		ID:       "user-" + uuid.NewString(),
		Username: username,
		Email:    email,
		Password: nu.Password,
		Profile:  nu.Profile,
	}
	r.users = append(r.users, u)
	r.byID[u.ID] = u

	cp := *u
	return &cp, nil
}

// FindByUsernameOrEmail returns a copy of the user whose username or email
// matches identifier case-insensitively, or nil.
func (r *Registry) FindByUsernameOrEmail(identifier string) *User {
	n := normalize(identifier)
	if n == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if normalize(u.Username) == n || normalize(u.Email) == n {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *Registry) FindByID(id string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// VerifyPassword compares plaintext with the stored password.
func (r *Registry) VerifyPassword(u *User, plaintext string) bool {
	if u == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(plaintext)) == 1
}

// UpdateProfile merges upd into the record identified by id. A changed email
// is subject to the same uniqueness rule as registration.
func (r *Registry) UpdateProfile(id string, upd ProfileUpdate) (*User, error) {
	if upd.Gender != nil && !upd.Gender.Valid() {
		return nil, fmt.Errorf("%w: unknown gender %q", common.ErrValidation, *upd.Gender)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if r.taken(email, id) {
			return nil, common.ErrDuplicateUser
		}
		u.Email = email
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&u.Profile.FirstName, upd.FirstName)
	set(&u.Profile.LastName, upd.LastName)
	set(&u.Profile.Phone, upd.Phone)
	set(&u.Profile.Address, upd.Address)
	if upd.Gender != nil {
		u.Profile.Gender = *upd.Gender
	}

	cp := *u
	return &cp, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Snapshot returns copies of all records in registration order.
func (r *Registry) Snapshot() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out
}

// Restore replaces the registry contents with records, e.g. from persisted
// state. Records without an id, or colliding with an earlier record, are
// skipped; the number of records kept is returned.
func (r *Registry) Restore(records []User) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = nil
	r.byID = make(map[string]*User, len(records))

	for i := range records {
		rec := records[i]
		if rec.ID == "" || rec.Username == "" {
			continue
		}
		if _, dup := r.byID[rec.ID]; dup {
			continue
		}
		if r.taken(rec.Username, "") || r.taken(rec.Email, "") {
			continue
		}
		r.users = append(r.users, &rec)
		r.byID[rec.ID] = &rec
	}
	return len(r.users)
}
