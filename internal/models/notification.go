package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationMaintenance = "maintenance_alert"
)

// Notification is an in-app record created when an alert is dispatched.
// It is immutable after creation; UI collaborators only read it.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotification creates a notification with a generated ID.
func NewNotification(title, message, notificationType string) (*Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(notificationType) == "" {
		notificationType = NotificationMaintenance
	}

	return &Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      notificationType,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Errors
type NotificationError struct {
	Message string
}

func (e NotificationError) Error() string {
	return e.Message
}

var ErrEmptyTitle = NotificationError{"notification title cannot be empty"}
