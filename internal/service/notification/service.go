package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/sse"
)

// Config tunes the background dispatch workers.
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type dispatcher struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config

	queue  chan notification.CreateNotificationRequest
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewDispatcher creates the notification dispatcher and starts its background
// workers. Callers must Stop it on shutdown to drain the queue.
func NewDispatcher(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Dispatcher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	d := &dispatcher{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("notification dispatcher started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return d
}

// worker drains the queue in batches, persisting then pushing to SSE.
func (d *dispatcher) worker(id int) {
	defer d.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, d.config.BatchSize)
	ticker := time.NewTicker(d.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = newNotification(req)
		}

		if err := d.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("failed to insert notification batch", "worker", id, "count", len(notifications), "error", err)
		} else {
			for _, n := range notifications {
				d.push(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-d.queue:
			batch = append(batch, req)
			if len(batch) >= d.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-d.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-d.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

func newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}
	return &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Priority:    priority,
		Data:        req.Data,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
}

func (d *dispatcher) push(n *notification.Notification) {
	d.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Event:  "notification",
		Data:   toResponse(n),
	})
}

// Dispatch queues a notification for async processing. A full queue falls
// back to a direct insert so notifications are not silently dropped.
func (d *dispatcher) Dispatch(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case d.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return d.directInsert(ctx, req)
	}
}

func (d *dispatcher) DispatchToMany(ctx context.Context, recipientIDs []string, req notification.CreateNotificationRequest) error {
	for _, id := range recipientIDs {
		r := req
		r.RecipientID = id
		if err := d.Dispatch(ctx, r); err != nil {
			slog.Error("failed to queue notification", "recipient_id", id, "type", r.Type, "error", err)
		}
	}
	return nil
}

func (d *dispatcher) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := newNotification(req)

	if err := d.repo.Create(ctx, n); err != nil {
		return err
	}

	d.push(n)
	return nil
}

func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func (d *dispatcher) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := d.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unread, err := d.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (d *dispatcher) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return d.repo.GetUnreadCount(ctx, userID)
}

func (d *dispatcher) MarkAllAsRead(ctx context.Context, userID string) error {
	return d.repo.MarkAllAsRead(ctx, userID)
}

func (d *dispatcher) Delete(ctx context.Context, userID string, notificationID string) error {
	return d.repo.Delete(ctx, notificationID, userID)
}

// Subscribe attaches an SSE subscriber. The returned cleanup tears down both
// the hub registration and the translation goroutine.
func (d *dispatcher) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	raw, cleanup := d.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for ev := range raw {
			resp, ok := ev.Data.(notification.NotificationResponse)
			if !ok {
				continue
			}
			select {
			case out <- notification.SSEEvent{Event: ev.Event, Data: resp}:
			default:
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue and waits for the workers to finish.
func (d *dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	slog.Info("notification dispatcher stopped")
}
