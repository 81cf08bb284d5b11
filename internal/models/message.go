package models

import "time"

// Message is an anonymous note left for a single owner.
type Message struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
