package anomaly

import (
	"context"

	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
)

// Detector evaluates the fixed rule checklist against each attendance event.
// Each rule may emit zero or one anomaly; an event can raise several.
// Detected anomalies are persisted PENDING and never block the event itself;
// hard ordering violations are rejected upstream and recorded via
// RecordOrderingViolation.
type Detector interface {
	EvaluateCheckIn(ctx context.Context, session attendance.Session) ([]Anomaly, error)

	EvaluateCheckOut(ctx context.Context, session attendance.Session) ([]Anomaly, error)

	// RecordOrderingViolation persists an URGENT anomaly for an attempted
	// out-of-order event whose state transition was rejected. The anomaly
	// references the raw event only (no session row was touched).
	RecordOrderingViolation(ctx context.Context, userID string, sessionType attendance.SessionType, description string) (Anomaly, error)
}

// Service is the approver-facing anomaly lifecycle.
type Service interface {
	Resolve(ctx context.Context, req ResolveRequest) (AnomalyResponse, error)

	GetAnomaly(ctx context.Context, id string) (AnomalyResponse, error)

	ListAnomalies(ctx context.Context, filter Filter) (ListAnomaliesResponse, error)
}
