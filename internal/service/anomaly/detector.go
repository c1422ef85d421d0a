package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/config"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/utils"
)

// DetectorImpl runs the fixed anomaly checklist against attendance events.
// The rules and their order are part of the audit contract; they are
// configured, never user-programmable.
type DetectorImpl struct {
	repo   anomaly.AnomalyRepository
	policy config.AttendanceConfig
	loc    *time.Location
}

func NewDetector(repo anomaly.AnomalyRepository, policy config.AttendanceConfig, loc *time.Location) anomaly.Detector {
	if loc == nil {
		loc = time.UTC
	}
	return &DetectorImpl{repo: repo, policy: policy, loc: loc}
}

// windowFor returns the expected local start and end of a session type on the
// session's date. Window strings are validated at config load.
func (d *DetectorImpl) windowFor(sessionType attendance.SessionType, date time.Time) (start, end time.Time) {
	startStr, endStr := d.policy.MorningStart, d.policy.MorningEnd
	if sessionType == attendance.SessionAfternoon {
		startStr, endStr = d.policy.AfternoonStart, d.policy.AfternoonEnd
	}

	parse := func(s string) time.Time {
		t, _ := time.Parse("15:04", s)
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, d.loc)
	}
	return parse(startStr), parse(endStr)
}

func (d *DetectorImpl) EvaluateCheckIn(ctx context.Context, session attendance.Session) ([]anomaly.Anomaly, error) {
	var detected []anomaly.Anomaly

	if session.CheckInAt != nil {
		windowStart, _ := d.windowFor(session.SessionType, session.Date)
		graceLimit := windowStart.Add(time.Duration(d.policy.GraceMinutes) * time.Minute)
		checkIn := session.CheckInAt.In(d.loc)

		if checkIn.After(graceLimit) {
			lateMinutes := int(checkIn.Sub(windowStart).Minutes())
			detected = append(detected, d.build(session, anomaly.RuleLateArrival, anomaly.SeverityNormal,
				fmt.Sprintf("check-in %d minutes after the %s window start", lateMinutes, session.SessionType)))
		}
	}

	if d.policy.RequireFaceVerification {
		failed := session.FaceVerified == nil || !*session.FaceVerified
		if !failed && session.FaceScore != nil && *session.FaceScore < d.policy.MinFaceScore {
			failed = true
		}
		if failed {
			detected = append(detected, d.build(session, anomaly.RuleFaceVerification, anomaly.SeverityHigh,
				"face verification missing or below the accepted score"))
		}
	}

	if a, ok := d.checkRadius(session, session.CheckInLatitude, session.CheckInLongitude); ok {
		detected = append(detected, a)
	}

	return d.persist(ctx, detected)
}

func (d *DetectorImpl) EvaluateCheckOut(ctx context.Context, session attendance.Session) ([]anomaly.Anomaly, error) {
	var detected []anomaly.Anomaly

	if session.CheckOutAt != nil {
		_, windowEnd := d.windowFor(session.SessionType, session.Date)
		earlyLimit := windowEnd.Add(-time.Duration(d.policy.GraceMinutes) * time.Minute)
		checkOut := session.CheckOutAt.In(d.loc)

		if checkOut.Before(earlyLimit) {
			earlyMinutes := int(windowEnd.Sub(checkOut).Minutes())
			detected = append(detected, d.build(session, anomaly.RuleEarlyDeparture, anomaly.SeverityNormal,
				fmt.Sprintf("check-out %d minutes before the %s window end", earlyMinutes, session.SessionType)))
		}
	}

	if a, ok := d.checkRadius(session, session.CheckOutLatitude, session.CheckOutLongitude); ok {
		detected = append(detected, a)
	}

	return d.persist(ctx, detected)
}

// RecordOrderingViolation persists an URGENT anomaly for an event whose state
// transition was rejected. No session row exists for it, so SessionID is nil.
func (d *DetectorImpl) RecordOrderingViolation(ctx context.Context, userID string, sessionType attendance.SessionType, description string) (anomaly.Anomaly, error) {
	a := anomaly.Anomaly{
		ID:          uuid.New().String(),
		UserID:      userID,
		Rule:        anomaly.RuleOrderingViolation,
		Description: fmt.Sprintf("%s (%s session)", description, sessionType),
		Severity:    anomaly.SeverityUrgent,
		Status:      anomaly.StatusPending,
	}

	created, err := d.repo.Create(ctx, a)
	if err != nil {
		return anomaly.Anomaly{}, fmt.Errorf("failed to record ordering violation: %w", err)
	}
	return created, nil
}

func (d *DetectorImpl) checkRadius(session attendance.Session, lat, lon *float64) (anomaly.Anomaly, bool) {
	if lat == nil || lon == nil {
		return anomaly.Anomaly{}, false
	}

	distance := utils.HaversineDistanceMeters(*lat, *lon, d.policy.WorksiteLatitude, d.policy.WorksiteLongitude)
	if distance <= d.policy.WorksiteRadiusM {
		return anomaly.Anomaly{}, false
	}

	return d.build(session, anomaly.RuleOutsideWorksite, anomaly.SeverityHigh,
		fmt.Sprintf("event recorded %.0f m from the worksite (allowed radius %.0f m)", distance, d.policy.WorksiteRadiusM)), true
}

func (d *DetectorImpl) build(session attendance.Session, rule string, severity anomaly.Severity, description string) anomaly.Anomaly {
	sessionID := session.ID
	return anomaly.Anomaly{
		ID:          uuid.New().String(),
		SessionID:   &sessionID,
		UserID:      session.UserID,
		Rule:        rule,
		Description: description,
		Severity:    severity,
		Status:      anomaly.StatusPending,
	}
}

func (d *DetectorImpl) persist(ctx context.Context, detected []anomaly.Anomaly) ([]anomaly.Anomaly, error) {
	created := make([]anomaly.Anomaly, 0, len(detected))
	for _, a := range detected {
		c, err := d.repo.Create(ctx, a)
		if err != nil {
			return created, fmt.Errorf("failed to persist anomaly %s: %w", a.Rule, err)
		}
		created = append(created, c)
	}
	return created, nil
}
