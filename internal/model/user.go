// Package model defines domain entities for the application.
package model

import "time"

// User is an account that owns expense records.
// IsStaff marks elevated callers who can list and delete any user's records.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal returns the authenticated identity for this user.
func (u *User) Principal() *Principal {
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}
}

// Profile holds per-user details created alongside the account.
type Profile struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal holds the authenticated caller.
// This is injected into the request context by auth middleware.
type Principal struct {
	UserID   string
	Username string
	IsStaff  bool
}
