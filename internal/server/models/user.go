package models

import "time"

type User struct {
	ID                string
	Email             string
	PasswordHash      string
	Verified          bool
	Name              string
	Username          string
	ProfilePic        string
	CreatedAt         time.Time
	PasswordChangedAt *time.Time
}
