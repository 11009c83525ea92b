package models

import "time"

type Feedback struct {
	ID        string
	UserName  string
	Message   string
	CreatedAt time.Time
}
