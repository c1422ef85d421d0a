package anomaly

import "time"

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityNormal Severity = "NORMAL"
	SeverityHigh   Severity = "HIGH"
	SeverityUrgent Severity = "URGENT"
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusInvestigating Status = "INVESTIGATING"
	StatusResolved      Status = "RESOLVED"
	StatusDismissed     Status = "DISMISSED"
)

// Rule tags name the checklist rule that fired. The checklist is fixed and
// auditable, not user-programmable.
const (
	RuleLateArrival       = "LATE_ARRIVAL"
	RuleEarlyDeparture    = "EARLY_DEPARTURE"
	RuleFaceVerification  = "FACE_VERIFICATION_FAILED"
	RuleOutsideWorksite   = "OUTSIDE_WORKSITE_RADIUS"
	RuleOrderingViolation = "ORDERING_VIOLATION"
)

// Anomaly is a flagged deviation from expected attendance behavior. It
// references the triggering session, or only the raw event when the
// underlying transition was rejected (SessionID nil).
type Anomaly struct {
	ID          string
	SessionID   *string
	UserID      string
	Rule        string
	Description string
	Severity    Severity
	Status      Status

	ResolvedBy     *string
	ResolutionNote *string
	ResolvedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName *string
}

// ValidResolutionStatus reports whether s is a status an approver may set.
func ValidResolutionStatus(s Status) bool {
	switch s {
	case StatusResolved, StatusDismissed, StatusInvestigating:
		return true
	}
	return false
}
