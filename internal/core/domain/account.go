package domain

import "time"

// Account models a registered identity with its credentials, tier and
// optional robot/timeslot binding.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Disabled      bool      `json:"disabled"`
	Blacklisted   bool      `json:"blacklisted"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	BoundResource Resource  `json:"bound_resource"`
	Window        Window    `json:"window"`
	SessionToken  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Blocked reports whether either flag forbids authentication.
func (a *Account) Blocked() bool {
	return a.Disabled || a.Blacklisted
}

// Privileged reports whether the account belongs to the privileged set.
func (a *Account) Privileged() bool {
	return a.Role.Capabilities().Privileged
}

// SameBirthDate compares calendar dates only.
func (a *Account) SameBirthDate(dob time.Time) bool {
	y1, m1, d1 := a.DateOfBirth.UTC().Date()
	y2, m2, d2 := dob.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// InitialPassword is the deterministic password given to freshly created
// accounts; the owner is expected to replace it with set_password.
func InitialPassword(username string) string {
	return username
}

// AccountUpdate is a partial update applied atomically by the store.
// Nil fields are left untouched.
type AccountUpdate struct {
	PasswordHash  *string
	Disabled      *bool
	Blacklisted   *bool
	BoundResource *Resource
	Window        *Window
	SessionToken  *string
}

// Identity is what the session authority hands to downstream components.
type Identity struct {
	Username string
	Role     Role
	Token    string
	Expiry   time.Time
}
