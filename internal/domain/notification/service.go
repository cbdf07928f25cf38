package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkAsRead(ctx context.Context, recipientID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, recipientID string) error

	// Subscribe streams notifications for a topic: an employee id or sse.TopicAdmins.
	Subscribe(ctx context.Context, topic string) (<-chan SSEEvent, func())

	Stop()
}
