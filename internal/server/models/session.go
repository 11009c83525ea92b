package models

import "time"

// SessionUser is the password-free user snapshot stored in a session record.
// Absence of a snapshot means the request is unauthenticated.
type SessionUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"createdAt"`
}
