package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotKey struct {
	userID      string
	date        string
	sessionType attendance.SessionType
}

type fakeSessionRepo struct {
	sessions map[slotKey]*attendance.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[slotKey]*attendance.Session)}
}

func key(userID string, date time.Time, sessionType attendance.SessionType) slotKey {
	return slotKey{userID: userID, date: date.Format("2006-01-02"), sessionType: sessionType}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	k := key(session.UserID, session.Date, session.SessionType)
	if _, exists := f.sessions[k]; exists {
		return attendance.Session{}, attendance.ErrAlreadyCheckedIn
	}
	session.CreatedAt = time.Now()
	f.sessions[k] = &session
	return session, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (attendance.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return *s, nil
		}
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (f *fakeSessionRepo) GetByUserDateType(ctx context.Context, userID string, date time.Time, sessionType attendance.SessionType) (*attendance.Session, error) {
	if s, ok := f.sessions[key(userID, date, sessionType)]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) Close(ctx context.Context, update attendance.CloseUpdate) (attendance.Session, error) {
	for _, s := range f.sessions {
		if s.ID == update.SessionID {
			if s.CheckOutAt != nil {
				return attendance.Session{}, attendance.ErrNoOpenCheckIn
			}
			checkOut := update.CheckOutAt
			worked := update.WorkedMinutes
			s.CheckOutAt = &checkOut
			s.WorkedMinutes = &worked
			s.CheckOutLatitude = update.CheckOutLatitude
			s.CheckOutLongitude = update.CheckOutLongitude
			return *s, nil
		}
	}
	return attendance.Session{}, attendance.ErrNoOpenCheckIn
}

func (f *fakeSessionRepo) GetTodaySessions(ctx context.Context, userID string, date time.Time) (*attendance.Session, *attendance.Session, error) {
	var morning, afternoon *attendance.Session
	if s, ok := f.sessions[key(userID, date, attendance.SessionMorning)]; ok {
		copied := *s
		morning = &copied
	}
	if s, ok := f.sessions[key(userID, date, attendance.SessionAfternoon)]; ok {
		copied := *s
		afternoon = &copied
	}
	return morning, afternoon, nil
}

func (f *fakeSessionRepo) ListByUser(ctx context.Context, userID string, filter attendance.MySessionFilter) ([]attendance.Session, int64, error) {
	var out []attendance.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, int64, error) {
	var out []attendance.Session
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

type fakeAccountRepo struct {
	approverIDs []string
}

func (f *fakeAccountRepo) Create(ctx context.Context, acc account.Account) (account.Account, error) {
	return acc, nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	return account.Account{}, account.ErrAccountNotFound
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return account.Account{}, account.ErrAccountNotFound
}

func (f *fakeAccountRepo) UpdateStatus(ctx context.Context, id string, status account.Status) error {
	return nil
}

func (f *fakeAccountRepo) ListIDsByRole(ctx context.Context, role account.Role) ([]string, error) {
	return f.approverIDs, nil
}

type fakeDetector struct {
	checkInAnomalies  []anomaly.Anomaly
	checkOutAnomalies []anomaly.Anomaly
	violations        []string
}

func (f *fakeDetector) EvaluateCheckIn(ctx context.Context, session attendance.Session) ([]anomaly.Anomaly, error) {
	return f.checkInAnomalies, nil
}

func (f *fakeDetector) EvaluateCheckOut(ctx context.Context, session attendance.Session) ([]anomaly.Anomaly, error) {
	return f.checkOutAnomalies, nil
}

func (f *fakeDetector) RecordOrderingViolation(ctx context.Context, userID string, sessionType attendance.SessionType, description string) (anomaly.Anomaly, error) {
	f.violations = append(f.violations, description)
	return anomaly.Anomaly{
		ID:       uuid.New().String(),
		UserID:   userID,
		Rule:     anomaly.RuleOrderingViolation,
		Severity: anomaly.SeverityUrgent,
		Status:   anomaly.StatusPending,
	}, nil
}

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

type managerFixture struct {
	manager    attendance.SessionManager
	sessions   *fakeSessionRepo
	detector   *fakeDetector
	auditor    *stubAuditor
	dispatcher *stubDispatcher
}

func newManagerFixture() managerFixture {
	sessions := newFakeSessionRepo()
	detector := &fakeDetector{}
	auditor := &stubAuditor{}
	dispatcher := &stubDispatcher{}
	accounts := &fakeAccountRepo{approverIDs: []string{"rh-1"}}
	return managerFixture{
		manager:    NewSessionManager(sessions, accounts, detector, auditor, dispatcher, time.UTC),
		sessions:   sessions,
		detector:   detector,
		auditor:    auditor,
		dispatcher: dispatcher,
	}
}

func activeUserContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":        userID,
		"role":           "USER",
		"account_status": "ACTIVE",
		"type":           "access",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func inactiveUserContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":        userID,
		"role":           "USER",
		"account_status": "PENDING",
		"type":           "access",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func approverContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":        userID,
		"role":           "RH",
		"account_status": "ACTIVE",
		"type":           "access",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestSessionManager_CheckIn(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	resp, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	assert.Equal(t, "OPEN", resp.Session.Status)
	assert.Equal(t, string(attendance.SessionMorning), resp.Session.SessionType)
	assert.NotNil(t, resp.Session.CheckInAt)
	assert.False(t, resp.Session.AnomalyDetected)

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, audit.ActionCheckIn, f.auditor.entries[0].Action)
	assert.Equal(t, "user-1", f.auditor.entries[0].ActorID)
}

func TestSessionManager_CheckIn_DuplicateRecordsViolation(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	_, err = f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	require.Len(t, f.detector.violations, 1)
	assert.Contains(t, f.detector.violations[0], "duplicate check-in")
}

func TestSessionManager_CheckIn_BothSlotsIndependent(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	_, err = f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionAfternoon})
	require.NoError(t, err)
}

func TestSessionManager_CheckIn_InactiveAccount(t *testing.T) {
	f := newManagerFixture()
	ctx := inactiveUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	assert.ErrorIs(t, err, account.ErrAccountInactive)
}

func TestSessionManager_CheckIn_InvalidSessionType(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: "EVENING"})
	require.Error(t, err)
}

func TestSessionManager_CheckIn_AnomalyFanOut(t *testing.T) {
	f := newManagerFixture()
	f.detector.checkInAnomalies = []anomaly.Anomaly{
		{ID: "a-1", Rule: anomaly.RuleLateArrival, Severity: anomaly.SeverityNormal, Status: anomaly.StatusPending},
	}
	ctx := activeUserContext(t, "user-1")

	resp, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	assert.True(t, resp.Session.AnomalyDetected)
	assert.Equal(t, []string{anomaly.RuleLateArrival}, resp.Session.AnomalyReasons)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "rh-1", f.dispatcher.dispatched[0].RecipientID)
	assert.Equal(t, notification.TypeAttendanceAnomaly, f.dispatcher.dispatched[0].Type)
}

func TestSessionManager_CheckOut(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	resp, err := f.manager.CheckOut(ctx, attendance.CheckOutRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", resp.Session.Status)
	require.NotNil(t, resp.Session.WorkedMinutes)
	assert.GreaterOrEqual(t, *resp.Session.WorkedMinutes, 0)

	require.Len(t, f.auditor.entries, 2)
	assert.Equal(t, audit.ActionCheckOut, f.auditor.entries[1].Action)
}

func TestSessionManager_CheckOut_WithoutCheckIn(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckOut(ctx, attendance.CheckOutRequest{SessionType: attendance.SessionAfternoon})
	assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)

	require.Len(t, f.detector.violations, 1)
	assert.Contains(t, f.detector.violations[0], "without a prior check-in")

	// The urgent anomaly is fanned out to the approvers.
	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, notification.TypeAttendanceAnomaly, f.dispatcher.dispatched[0].Type)
}

func TestSessionManager_CheckOut_Twice(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	_, err := f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)
	_, err = f.manager.CheckOut(ctx, attendance.CheckOutRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	_, err = f.manager.CheckOut(ctx, attendance.CheckOutRequest{SessionType: attendance.SessionMorning})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
	require.Len(t, f.detector.violations, 1)
	assert.Contains(t, f.detector.violations[0], "duplicate check-out")
}

func TestSessionManager_TodayStatus(t *testing.T) {
	f := newManagerFixture()
	ctx := activeUserContext(t, "user-1")

	status, err := f.manager.GetTodayStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Morning.HasCheckedIn)
	assert.False(t, status.Afternoon.HasCheckedIn)

	_, err = f.manager.CheckIn(ctx, attendance.CheckInRequest{SessionType: attendance.SessionMorning})
	require.NoError(t, err)

	status, err = f.manager.GetTodayStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Morning.HasCheckedIn)
	assert.False(t, status.Morning.HasCheckedOut)
	require.NotNil(t, status.Morning.CheckInTime)
	assert.False(t, status.Afternoon.HasCheckedIn)
}

func TestSessionManager_ListSessions_RequiresApprover(t *testing.T) {
	f := newManagerFixture()

	_, err := f.manager.ListSessions(activeUserContext(t, "user-1"), attendance.SessionFilter{})
	assert.ErrorIs(t, err, employee.ErrApproverRoleRequired)

	_, err = f.manager.ListSessions(approverContext(t, "rh-1"), attendance.SessionFilter{})
	assert.NoError(t, err)
}
