package service

import (
	"time"

	"anonymous_messages/internal/models"
)

// Message status filters accepted on the dashboard.
const (
	StatusRead   = "read"
	StatusUnread = "unread"
)

// InboxFilter narrows the dashboard listing by time range and read status.
type InboxFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Status string    // "", "read", "unread"
}

// Dashboard is everything the owner's inbox view needs except the share URL,
// which depends on the request.
type Dashboard struct {
	Messages    []models.Message
	UnreadCount int
	TotalCount  int
}

// InboxCounts is the live counter pushed over WebSocket.
type InboxCounts struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}
