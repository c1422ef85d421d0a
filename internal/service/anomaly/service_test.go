package anomaly

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditor struct {
	entries []audit.Entry
}

func (s *stubAuditor) Log(ctx context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

func (s *stubAuditor) Query(ctx context.Context, filter audit.Filter) (audit.ListEntriesResponse, error) {
	return audit.ListEntriesResponse{}, nil
}

type stubDispatcher struct {
	dispatched []notification.CreateNotificationRequest
}

func (s *stubDispatcher) Dispatch(ctx context.Context, req notification.CreateNotificationRequest) error {
	s.dispatched = append(s.dispatched, req)
	return nil
}

func (s *stubDispatcher) DispatchToMany(ctx context.Context, recipientIDs []string, req notification.CreateNotificationRequest) error {
	for _, id := range recipientIDs {
		r := req
		r.RecipientID = id
		s.dispatched = append(s.dispatched, r)
	}
	return nil
}

func (s *stubDispatcher) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (s *stubDispatcher) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *stubDispatcher) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (s *stubDispatcher) Delete(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (s *stubDispatcher) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() { close(ch) }
}

func (s *stubDispatcher) Stop() {}

func authedContext(t *testing.T, userID, role, status string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":        userID,
		"role":           role,
		"account_status": status,
		"type":           "access",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func seedAnomaly(t *testing.T, repo *fakeAnomalyRepo, status anomaly.Status) anomaly.Anomaly {
	t.Helper()
	sessionID := "session-1"
	a, err := repo.Create(context.Background(), anomaly.Anomaly{
		ID:          "anomaly-1",
		SessionID:   &sessionID,
		UserID:      "employee-1",
		Rule:        anomaly.RuleLateArrival,
		Description: "check-in 25 minutes after the MORNING window start",
		Severity:    anomaly.SeverityNormal,
		Status:      status,
	})
	require.NoError(t, err)
	return a
}

func TestAnomalyService_Resolve(t *testing.T) {
	repo := newFakeAnomalyRepo()
	auditor := &stubAuditor{}
	dispatcher := &stubDispatcher{}
	svc := NewAnomalyService(repo, auditor, dispatcher)

	seedAnomaly(t, repo, anomaly.StatusPending)
	ctx := authedContext(t, "rh-1", "RH", "ACTIVE")

	resp, err := svc.Resolve(ctx, anomaly.ResolveRequest{
		AnomalyID:  "anomaly-1",
		Status:     anomaly.StatusResolved,
		Resolution: "employee documented a delayed train",
	})
	require.NoError(t, err)

	assert.Equal(t, string(anomaly.StatusResolved), resp.Status)
	require.NotNil(t, resp.ResolvedBy)
	assert.Equal(t, "rh-1", *resp.ResolvedBy)
	require.NotNil(t, resp.ResolutionNote)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionAnomalyResolved, auditor.entries[0].Action)

	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, "employee-1", dispatcher.dispatched[0].RecipientID)
	assert.Equal(t, notification.TypeAnomalyResolved, dispatcher.dispatched[0].Type)
}

func TestAnomalyService_Resolve_InvestigatingKeepsItOpen(t *testing.T) {
	repo := newFakeAnomalyRepo()
	dispatcher := &stubDispatcher{}
	svc := NewAnomalyService(repo, &stubAuditor{}, dispatcher)

	seedAnomaly(t, repo, anomaly.StatusPending)
	ctx := authedContext(t, "rh-1", "RH", "ACTIVE")

	resp, err := svc.Resolve(ctx, anomaly.ResolveRequest{
		AnomalyID: "anomaly-1",
		Status:    anomaly.StatusInvestigating,
	})
	require.NoError(t, err)
	assert.Equal(t, string(anomaly.StatusInvestigating), resp.Status)

	// No employee notification while the case is still open.
	assert.Empty(t, dispatcher.dispatched)
}

func TestAnomalyService_Resolve_RequiresNote(t *testing.T) {
	repo := newFakeAnomalyRepo()
	svc := NewAnomalyService(repo, &stubAuditor{}, &stubDispatcher{})

	seedAnomaly(t, repo, anomaly.StatusPending)
	ctx := authedContext(t, "rh-1", "RH", "ACTIVE")

	_, err := svc.Resolve(ctx, anomaly.ResolveRequest{
		AnomalyID: "anomaly-1",
		Status:    anomaly.StatusResolved,
	})
	require.Error(t, err)
}

func TestAnomalyService_Resolve_RequiresApproverRole(t *testing.T) {
	repo := newFakeAnomalyRepo()
	svc := NewAnomalyService(repo, &stubAuditor{}, &stubDispatcher{})

	seedAnomaly(t, repo, anomaly.StatusPending)
	ctx := authedContext(t, "employee-2", "USER", "ACTIVE")

	_, err := svc.Resolve(ctx, anomaly.ResolveRequest{
		AnomalyID:  "anomaly-1",
		Status:     anomaly.StatusDismissed,
		Resolution: "noise",
	})
	assert.ErrorIs(t, err, employee.ErrApproverRoleRequired)
}

func TestAnomalyService_Resolve_AlreadyResolved(t *testing.T) {
	repo := newFakeAnomalyRepo()
	svc := NewAnomalyService(repo, &stubAuditor{}, &stubDispatcher{})

	seedAnomaly(t, repo, anomaly.StatusResolved)
	ctx := authedContext(t, "rh-1", "RH", "ACTIVE")

	_, err := svc.Resolve(ctx, anomaly.ResolveRequest{
		AnomalyID:  "anomaly-1",
		Status:     anomaly.StatusDismissed,
		Resolution: "second opinion",
	})
	assert.True(t, errors.Is(err, anomaly.ErrInvalidResolutionState))
}

func TestAnomalyService_GetAnomaly_NotFound(t *testing.T) {
	svc := NewAnomalyService(newFakeAnomalyRepo(), &stubAuditor{}, &stubDispatcher{})
	ctx := authedContext(t, "rh-1", "RH", "ACTIVE")

	_, err := svc.GetAnomaly(ctx, "missing")
	assert.ErrorIs(t, err, anomaly.ErrAnomalyNotFound)
}
