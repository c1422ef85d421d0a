package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
)

type SessionManagerImpl struct {
	sessions   attendance.SessionRepository
	accounts   account.AccountRepository
	detector   anomaly.Detector
	auditor    audit.Service
	dispatcher notification.Dispatcher
	loc        *time.Location
}

func NewSessionManager(
	sessions attendance.SessionRepository,
	accounts account.AccountRepository,
	detector anomaly.Detector,
	auditor audit.Service,
	dispatcher notification.Dispatcher,
	loc *time.Location,
) attendance.SessionManager {
	if loc == nil {
		loc = time.UTC
	}
	return &SessionManagerImpl{
		sessions:   sessions,
		accounts:   accounts,
		detector:   detector,
		auditor:    auditor,
		dispatcher: dispatcher,
		loc:        loc,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// identityFromContext returns the verified identity triple. Attendance events
// additionally require an ACTIVE account.
func identityFromContext(ctx context.Context, requireActive bool) (userID string, role account.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", fmt.Errorf("role claim is missing or invalid")
	}

	if requireActive {
		status, ok := claims["account_status"].(string)
		if !ok || account.Status(status) != account.StatusActive {
			return "", "", account.ErrAccountInactive
		}
	}

	return userID, account.Role(roleStr), nil
}

// today returns the working day in the configured timezone, truncated to
// midnight UTC for storage as a DATE column.
func (m *SessionManagerImpl) today(now time.Time) time.Time {
	local := now.In(m.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *SessionManagerImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}

	userID, _, err := identityFromContext(ctx, true)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	now := time.Now().UTC()
	session := attendance.Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        m.today(now),
		SessionType: req.SessionType,
		CheckInAt:   &now,
	}
	if v := req.Verification; v != nil {
		session.PhotoURL = v.PhotoURL
		session.DeviceFingerprint = v.DeviceFingerprint
		session.CheckInLatitude = v.Latitude
		session.CheckInLongitude = v.Longitude
		session.FaceVerified = v.FaceVerified
		session.FaceScore = v.VerificationScore
	}

	created, err := m.sessions.Create(ctx, session)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			m.recordViolation(ctx, userID, req.SessionType, "duplicate check-in attempt")
		}
		return attendance.EventResponse{}, err
	}

	detected, derr := m.detector.EvaluateCheckIn(ctx, created)
	if derr != nil {
		slog.Error("anomaly evaluation failed on check-in", "session_id", created.ID, "error", derr)
	}

	m.auditor.Log(ctx, audit.Entry{
		ActorID:    userID,
		Action:     audit.ActionCheckIn,
		EntityType: "attendance_session",
		EntityID:   created.ID,
		Changes: map[string]interface{}{
			"session_type": string(created.SessionType),
			"check_in_at":  now.Format(time.RFC3339),
			"anomalies":    ruleTags(detected),
		},
		Severity: auditSeverity(detected),
	})

	m.notifyApproversOfAnomalies(ctx, userID, created.ID, detected)

	return attendance.EventResponse{Session: m.toResponse(created, detected)}, nil
}

func (m *SessionManagerImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}

	userID, _, err := identityFromContext(ctx, true)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	now := time.Now().UTC()
	existing, err := m.sessions.GetByUserDateType(ctx, userID, m.today(now), req.SessionType)
	if err != nil {
		return attendance.EventResponse{}, err
	}
	if existing == nil {
		m.recordViolation(ctx, userID, req.SessionType, "check-out without a prior check-in")
		return attendance.EventResponse{}, attendance.ErrNoOpenCheckIn
	}
	if existing.CheckOutAt != nil {
		m.recordViolation(ctx, userID, req.SessionType, "duplicate check-out attempt")
		return attendance.EventResponse{}, attendance.ErrAlreadyCheckedOut
	}

	update := attendance.CloseUpdate{
		SessionID:     existing.ID,
		CheckOutAt:    now,
		WorkedMinutes: int(now.Sub(*existing.CheckInAt).Minutes()),
	}
	if v := req.Verification; v != nil {
		update.CheckOutLatitude = v.Latitude
		update.CheckOutLongitude = v.Longitude
	}

	closed, err := m.sessions.Close(ctx, update)
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenCheckIn) {
			// Lost a race with a concurrent check-out.
			m.recordViolation(ctx, userID, req.SessionType, "duplicate check-out attempt")
			return attendance.EventResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.EventResponse{}, err
	}

	detected, derr := m.detector.EvaluateCheckOut(ctx, closed)
	if derr != nil {
		slog.Error("anomaly evaluation failed on check-out", "session_id", closed.ID, "error", derr)
	}

	m.auditor.Log(ctx, audit.Entry{
		ActorID:    userID,
		Action:     audit.ActionCheckOut,
		EntityType: "attendance_session",
		EntityID:   closed.ID,
		Changes: map[string]interface{}{
			"session_type":   string(closed.SessionType),
			"check_out_at":   now.Format(time.RFC3339),
			"worked_minutes": update.WorkedMinutes,
			"anomalies":      ruleTags(detected),
		},
		Severity: auditSeverity(detected),
	})

	m.notifyApproversOfAnomalies(ctx, userID, closed.ID, detected)

	return attendance.EventResponse{Session: m.toResponse(closed, detected)}, nil
}

// recordViolation persists the URGENT ordering anomaly and fans it out to the
// approvers. The rejected event itself still returns its domain error.
func (m *SessionManagerImpl) recordViolation(ctx context.Context, userID string, sessionType attendance.SessionType, description string) {
	a, err := m.detector.RecordOrderingViolation(ctx, userID, sessionType, description)
	if err != nil {
		slog.Error("failed to record ordering violation", "user_id", userID, "error", err)
		return
	}
	m.notifyApproversOfAnomalies(ctx, userID, "", []anomaly.Anomaly{a})
}

func (m *SessionManagerImpl) notifyApproversOfAnomalies(ctx context.Context, userID, sessionID string, detected []anomaly.Anomaly) {
	if len(detected) == 0 {
		return
	}

	approverIDs, err := m.accounts.ListIDsByRole(ctx, account.RoleRH)
	if err != nil {
		slog.Error("failed to resolve anomaly recipients", "error", err)
		return
	}
	if len(approverIDs) == 0 {
		return
	}

	data := map[string]interface{}{
		"user_id": userID,
		"rules":   ruleTags(detected),
	}
	if sessionID != "" {
		data["session_id"] = sessionID
	}

	err = m.dispatcher.DispatchToMany(ctx, approverIDs, notification.CreateNotificationRequest{
		SenderID: &userID,
		Type:     notification.TypeAttendanceAnomaly,
		Title:    "Attendance anomaly detected",
		Message:  fmt.Sprintf("%d anomaly(ies) flagged on an attendance event.", len(detected)),
		Priority: notification.PriorityHigh,
		Data:     data,
	})
	if err != nil {
		slog.Error("failed to dispatch anomaly notifications", "error", err)
	}
}

func (m *SessionManagerImpl) GetTodayStatus(ctx context.Context) (attendance.TodayStatusResponse, error) {
	userID, _, err := identityFromContext(ctx, false)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	today := m.today(time.Now().UTC())
	morning, afternoon, err := m.sessions.GetTodaySessions(ctx, userID, today)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	return attendance.TodayStatusResponse{
		Date:      today.Format("2006-01-02"),
		Morning:   toSlotStatus(morning),
		Afternoon: toSlotStatus(afternoon),
	}, nil
}

func toSlotStatus(s *attendance.Session) attendance.SlotStatus {
	if s == nil {
		return attendance.SlotStatus{}
	}
	return attendance.SlotStatus{
		HasCheckedIn:  s.CheckInAt != nil,
		HasCheckedOut: s.CheckOutAt != nil,
		CheckInTime:   timePtrToString(s.CheckInAt),
		CheckOutTime:  timePtrToString(s.CheckOutAt),
	}
}

func (m *SessionManagerImpl) GetMySessions(ctx context.Context, filter attendance.MySessionFilter) (attendance.ListSessionsResponse, error) {
	userID, _, err := identityFromContext(ctx, false)
	if err != nil {
		return attendance.ListSessionsResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListSessionsResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	sessions, total, err := m.sessions.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListSessionsResponse{}, err
	}

	return m.toListResponse(sessions, total, filter.Page, filter.Limit), nil
}

func (m *SessionManagerImpl) ListSessions(ctx context.Context, filter attendance.SessionFilter) (attendance.ListSessionsResponse, error) {
	_, role, err := identityFromContext(ctx, false)
	if err != nil {
		return attendance.ListSessionsResponse{}, err
	}
	if !account.IsApproverRole(role) {
		return attendance.ListSessionsResponse{}, employee.ErrApproverRoleRequired
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListSessionsResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	sessions, total, err := m.sessions.List(ctx, filter)
	if err != nil {
		return attendance.ListSessionsResponse{}, err
	}

	return m.toListResponse(sessions, total, filter.Page, filter.Limit), nil
}

func (m *SessionManagerImpl) toListResponse(sessions []attendance.Session, total int64, page, limit int) attendance.ListSessionsResponse {
	responses := make([]attendance.SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = m.toResponse(s, nil)
	}
	return attendance.ListSessionsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Sessions:   responses,
	}
}

func (m *SessionManagerImpl) toResponse(s attendance.Session, detected []anomaly.Anomaly) attendance.SessionResponse {
	return attendance.SessionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		UserName:        s.UserName,
		Date:            s.Date.Format("2006-01-02"),
		SessionType:     string(s.SessionType),
		Status:          s.Status(),
		CheckInAt:       timePtrToString(s.CheckInAt),
		CheckOutAt:      timePtrToString(s.CheckOutAt),
		WorkedMinutes:   s.WorkedMinutes,
		AnomalyDetected: len(detected) > 0,
		AnomalyReasons:  ruleTags(detected),
	}
}

func ruleTags(detected []anomaly.Anomaly) []string {
	if len(detected) == 0 {
		return nil
	}
	tags := make([]string, len(detected))
	for i, a := range detected {
		tags[i] = a.Rule
	}
	return tags
}

func auditSeverity(detected []anomaly.Anomaly) audit.Severity {
	if len(detected) > 0 {
		return audit.SeverityWarning
	}
	return audit.SeverityInfo
}
