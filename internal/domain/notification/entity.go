package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeConsolidationValidated NotificationType = "consolidation_validated"
	TypeConsolidationCorrected NotificationType = "consolidation_corrected"
	TypeConsolidationReopened  NotificationType = "consolidation_reopened"
)

func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeConsolidationValidated,
		TypeConsolidationCorrected,
		TypeConsolidationReopened,
	}
}

func (t NotificationType) Valid() bool {
	for _, v := range AllNotificationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Notification is addressed to an employee and mirrored to the admin stream.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
