package audit

import "time"

// Action tags for every mutating operation in the system.
const (
	ActionCheckIn           = "ATTENDANCE_CHECK_IN"
	ActionCheckOut          = "ATTENDANCE_CHECK_OUT"
	ActionProfileSubmitted  = "PROFILE_SUBMITTED"
	ActionProfileResubmitted = "PROFILE_RESUBMITTED"
	ActionProfileApproved   = "PROFILE_APPROVED"
	ActionProfileRejected   = "PROFILE_REJECTED"
	ActionAnomalyResolved   = "ANOMALY_RESOLVED"
	ActionAccountRegistered = "ACCOUNT_REGISTERED"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Entry is one append-only audit record: the sole compliance trail of every
// mutation. Entries are never updated or deleted.
type Entry struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Changes    map[string]interface{}
	Severity   Severity
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}
