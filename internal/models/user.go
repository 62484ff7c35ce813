package models

import "time"

// UserStatus values. Anything other than "active" is treated as disabled by
// the frontend; the backend only stores the tag.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Profile holds the editable personal details attached to a user account.
type Profile struct {
	FullName           string `json:"fullName"`
	Phone              string `json:"phone"`
	Bio                string `json:"bio"`
	AvatarURL          string `json:"avatarUrl"`
	TwoFactorEnabled   bool   `json:"twoFactorEnabled"`
	LastPasswordChange string `json:"lastPasswordChange"`
}

// User is a console account. The password is stored and compared in plaintext:
// this backend mocks a real API for frontend development and deliberately
// skips credential hardening.
type User struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Permissions  []string `json:"permissions"`
	Status       string   `json:"status"`
	RegisteredAt string   `json:"registeredAt"`
	Profile      *Profile `json:"profile,omitempty"`
}

// PublicUser is the credential-free projection returned by list and mutation
// endpoints.
type PublicUser struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Permissions  []string `json:"permissions"`
	Status       string   `json:"status"`
	RegisteredAt string   `json:"registeredAt"`
}

// ProfileView is PublicUser plus the profile block, as served by the profile
// endpoints.
type ProfileView struct {
	PublicUser
	Profile Profile `json:"profile"`
}

// Public strips the credentials from a user record.
func (u User) Public() PublicUser {
	status := u.Status
	if status == "" {
		status = StatusActive
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Permissions:  perms,
		Status:       status,
		RegisteredAt: u.RegisteredAt,
	}
}

// View returns the profile projection, synthesizing an empty profile for
// records created before profiles existed.
func (u User) View() ProfileView {
	p := u.Profile
	if p == nil {
		p = &Profile{LastPasswordChange: u.RegisteredAt}
	}
	return ProfileView{PublicUser: u.Public(), Profile: *p}
}

// EnsureProfile materializes the profile block in place so updates have
// something to merge into.
func (u *User) EnsureProfile() *Profile {
	if u.Profile == nil {
		last := u.RegisteredAt
		if last == "" {
			last = time.Now().UTC().Format("2006-01-02")
		}
		u.Profile = &Profile{LastPasswordChange: last}
	}
	return u.Profile
}

// HasPermission reports whether the user carries the given capability tag.
func (u User) HasPermission(tag string) bool {
	for _, p := range u.Permissions {
		if p == tag {
			return true
		}
	}
	return false
}
