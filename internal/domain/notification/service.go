package notification

import "context"

// Dispatcher translates domain events into addressed notification records and
// attempts best-effort real-time delivery. Delivery failure never fails the
// originating business operation.
type Dispatcher interface {
	// Dispatch queues a notification for async persistence and push.
	Dispatch(ctx context.Context, req CreateNotificationRequest) error
	DispatchToMany(ctx context.Context, recipientIDs []string, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)

	// MarkAllAsRead is idempotent.
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	// Subscribe attaches an SSE subscriber for a recipient; the returned
	// cleanup must run on connection teardown.
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Stop drains the queue and stops the background workers.
	Stop()
}
