package models

import "time"

// Token purposes. A token proves control of an email address (verify) or of a
// prior authenticated request (reset).
const (
	TokenPurposeVerify = "verify"
	TokenPurposeReset  = "reset"
)

// Token is a single-use, time-limited secret bound to a user and a purpose.
// Only the bcrypt hash of the raw value is ever persisted.
type Token struct {
	ID        string
	UserID    string
	Purpose   string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}
