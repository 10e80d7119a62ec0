package models

import "time"

// HealthResponse is returned by health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// NotificationListResponse is returned when listing notifications
type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	TotalCount    int             `json:"totalCount"`
}
