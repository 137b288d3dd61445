package domain

import (
	"time"

	"github.com/openward/accountd/pkg/credential"
)

// User is the account record as the persistence layer hands it to us.
// Password is nil when the user has never set a password; when present
// its method tag and hash are always stored together.
type User struct {
	ID           string
	Username     string
	PrimaryEmail string
	Name         string
	Avatar       string
	IsSuspended  bool
	Password     *credential.Encrypted
	CustomData   map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a credential is on file.
func (u User) HasPassword() bool { return u.Password != nil }

// Profile is the subset of User returned by the profile endpoints.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	PrimaryEmail string `json:"primaryEmail,omitempty"`
	Name         string `json:"name,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	HasPassword  bool   `json:"hasPassword"`
}

// ProfileOf projects a User onto its public profile.
func ProfileOf(u User) Profile {
	return Profile{
		ID:           u.ID,
		Username:     u.Username,
		PrimaryEmail: u.PrimaryEmail,
		Name:         u.Name,
		Avatar:       u.Avatar,
		HasPassword:  u.HasPassword(),
	}
}

// ProfilePatch is a partial profile update. Nil fields are left untouched;
// pointed-to empty strings clear the field (name and avatar only).
type ProfilePatch struct {
	Username     *string
	PrimaryEmail *string
	Name         *string
	Avatar       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Username == nil && p.PrimaryEmail == nil && p.Name == nil && p.Avatar == nil
}
