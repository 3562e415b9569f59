package domain

import "time"

// User represents a registered account. The password column is only loaded
// for the login comparison; it never serializes to JSON.
type User struct {
	ID                int64        `json:"id"`
	Email             string       `json:"email"`
	Password          string       `json:"-"`
	Verified          bool         `json:"verified"`
	LastLogin         time.Time    `json:"lastLogin"`
	LastPasswordReset *time.Time   `json:"lastPasswordReset,omitempty"`
	GoogleRegistered  bool         `json:"googleRegistered"`
	Avatar            *Avatar      `json:"avatar,omitempty"`
	Preferences       *Preferences `json:"preferences,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Avatar holds an uploaded profile image reference
type Avatar struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Preferences is the onboarding preference sub-object. Updates replace it
// wholesale, there is no partial merge.
type Preferences struct {
	SelfDescription string   `json:"selfDescription"`
	Work            []string `json:"work"`
	Country         string   `json:"country"`
	ToolStack       []string `json:"toolStack"`
	Goals           []string `json:"goals"`
}

// PendingUser is a signup that has not been persisted yet. It only exists
// inside a verification token's claims; the password is already hashed.
type PendingUser struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"password"`
}
