package model

import "time"

// Notification is an append-only log entry recording a message sent to a user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotificationTypeEmail  = "email"
	NotificationTypeSystem = "system"
)

// Notification statuses.
const (
	NotificationStatusSent    = "sent"
	NotificationStatusPending = "pending"
	NotificationStatusRead    = "read"
)
