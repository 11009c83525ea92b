package models

import "time"

type Dress struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Section    string    `json:"section"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"imageUrl"`
	UserEmail  string    `json:"userEmail"`
	IsFavorite bool      `json:"isFavorite"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}
