package notification

import "time"

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeProfileSubmitted  NotificationType = "profile_submitted"
	TypeProfileApproved   NotificationType = "profile_approved"
	TypeProfileRejected   NotificationType = "profile_rejected"
	TypeAttendanceAnomaly NotificationType = "attendance_anomaly"
	TypeAnomalyResolved   NotificationType = "anomaly_resolved"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Notification represents a notification entity. Only the is_read flag is
// ever mutated; deletion is explicit by the recipient.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Priority    Priority
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
