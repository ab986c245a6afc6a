package users

// Gender values accepted in a profile. Empty means "not set".
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer not to say"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

// Profile holds the user-editable fields shown on the profile screen.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Gender    Gender `json:"gender,omitempty"`
}

// User is a registered account. ID never changes once assigned.
// Password is kept verbatim: this registry is a local mock of an account
// backend, not a credential store.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email,omitempty"`
	Password string  `json:"password"`
	Profile  Profile `json:"profile"`
}

// NewUser is the registration input.
type NewUser struct {
	Username string
	Email    string
	Password string
	Profile  Profile
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	Gender    *Gender
}
