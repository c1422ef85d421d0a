package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	stored  []*notification.Notification
	readAll []string
	deleted []string
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, n)
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, notifications...)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.stored {
		if n.RecipientID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (f *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.stored {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readAll = append(f.readAll, userID)
	for _, n := range f.stored {
		if n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, id string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.stored {
		if n.ID == id && n.RecipientID == userID {
			f.stored = append(f.stored[:i], f.stored[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

func (f *fakeNotificationRepo) all() []*notification.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*notification.Notification, len(f.stored))
	copy(out, f.stored)
	return out
}

func testRequest(recipientID string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		RecipientID: recipientID,
		Type:        notification.TypeProfileApproved,
		Title:       "Profile approved",
		Message:     "Your profile has been approved.",
	}
}

func TestDispatcher_DispatchAndStopDrains(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{FlushInterval: time.Hour})

	require.NoError(t, d.Dispatch(context.Background(), testRequest("user-1")))
	require.NoError(t, d.Dispatch(context.Background(), testRequest("user-2")))

	// Stop drains the queue and flushes before the workers exit.
	d.Stop()

	require.Equal(t, 2, repo.count())
	for _, n := range repo.all() {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, notification.PriorityNormal, n.Priority)
		assert.False(t, n.IsRead)
	}
}

func TestDispatcher_BatchSizeTriggersFlush(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{BatchSize: 2, FlushInterval: time.Hour, WorkerCount: 1})
	defer d.Stop()

	require.NoError(t, d.Dispatch(context.Background(), testRequest("user-1")))
	require.NoError(t, d.Dispatch(context.Background(), testRequest("user-1")))

	require.Eventually(t, func() bool {
		return repo.count() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_DispatchToMany(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{FlushInterval: time.Hour})

	require.NoError(t, d.DispatchToMany(context.Background(), []string{"rh-1", "rh-2", "rh-3"}, testRequest("")))
	d.Stop()

	require.Equal(t, 3, repo.count())
	recipients := make(map[string]bool)
	for _, n := range repo.all() {
		recipients[n.RecipientID] = true
	}
	assert.Len(t, recipients, 3)
}

func TestDispatcher_SubscriberReceivesPush(t *testing.T) {
	repo := &fakeNotificationRepo{}
	hub := sse.NewHub()
	d := NewDispatcher(repo, hub, Config{BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1})
	defer d.Stop()

	events, cleanup := d.Subscribe(context.Background(), "user-1")
	defer cleanup()

	require.NoError(t, d.Dispatch(context.Background(), testRequest("user-1")))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Profile approved", ev.Data.Title)
		assert.Equal(t, notification.TypeProfileApproved, ev.Data.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pushed notification")
	}
}

func TestDispatcher_QueueFullFallsBackToDirectInsert(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{QueueSize: 1, FlushInterval: time.Hour, WorkerCount: 1})
	defer d.Stop()

	// Saturate the queue faster than the worker can keep up; every Dispatch
	// must land in the repo eventually, either batched or direct.
	for i := 0; i < 50; i++ {
		require.NoError(t, d.Dispatch(context.Background(), testRequest("user-1")))
	}

	require.Eventually(t, func() bool {
		return repo.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_GetNotifications(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{FlushInterval: time.Hour})
	defer d.Stop()

	require.NoError(t, repo.Create(context.Background(), &notification.Notification{
		ID:          "n-1",
		RecipientID: "user-1",
		Type:        notification.TypeProfileApproved,
		Title:       "Profile approved",
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, repo.Create(context.Background(), &notification.Notification{
		ID:          "n-2",
		RecipientID: "user-1",
		Type:        notification.TypeProfileRejected,
		Title:       "Profile rejected",
		IsRead:      true,
		CreatedAt:   time.Now(),
	}))

	resp, err := d.GetNotifications(context.Background(), "user-1", 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.UnreadCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)

	unread, err := d.GetNotifications(context.Background(), "user-1", 1, 20, true)
	require.NoError(t, err)
	require.Len(t, unread.Notifications, 1)
	assert.Equal(t, "n-1", unread.Notifications[0].ID)
}

func TestDispatcher_MarkAllAsRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{FlushInterval: time.Hour})
	defer d.Stop()

	require.NoError(t, repo.Create(context.Background(), &notification.Notification{
		ID:          "n-1",
		RecipientID: "user-1",
	}))

	require.NoError(t, d.MarkAllAsRead(context.Background(), "user-1"))

	count, err := d.GetUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Idempotent on an already-read inbox.
	require.NoError(t, d.MarkAllAsRead(context.Background(), "user-1"))
}

func TestDispatcher_Delete(t *testing.T) {
	repo := &fakeNotificationRepo{}
	d := NewDispatcher(repo, sse.NewHub(), Config{FlushInterval: time.Hour})
	defer d.Stop()

	require.NoError(t, repo.Create(context.Background(), &notification.Notification{
		ID:          "n-1",
		RecipientID: "user-1",
	}))

	// Scoped to the owner: another user cannot delete it.
	err := d.Delete(context.Background(), "user-2", "n-1")
	assert.True(t, errors.Is(err, notification.ErrNotificationNotFound))

	require.NoError(t, d.Delete(context.Background(), "user-1", "n-1"))
	assert.Equal(t, 0, repo.count())
}
