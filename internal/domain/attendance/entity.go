package attendance

import "time"

// SessionType is one of the two daily attendance periods.
type SessionType string

const (
	SessionMorning   SessionType = "MORNING"
	SessionAfternoon SessionType = "AFTERNOON"
)

// ValidSessionType reports whether st is a known session type.
func ValidSessionType(st SessionType) bool {
	return st == SessionMorning || st == SessionAfternoon
}

// Session is one check-in/check-out window. At most one row exists per
// (user, date, session type); the database enforces this with a unique index.
type Session struct {
	ID          string
	UserID      string
	Date        time.Time // working day, truncated to midnight
	SessionType SessionType
	CheckInAt   *time.Time
	CheckOutAt  *time.Time

	WorkedMinutes *int

	// Verification metadata captured at check-in
	DeviceFingerprint *string
	PhotoURL          *string
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	FaceVerified      *bool
	FaceScore         *float64

	// Captured at check-out
	CheckOutLatitude  *float64
	CheckOutLongitude *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName *string
}

// Status is derived from the presence of the two timestamps.
func (s Session) Status() string {
	switch {
	case s.CheckOutAt != nil:
		return "COMPLETED"
	case s.CheckInAt != nil:
		return "OPEN"
	default:
		return "EMPTY"
	}
}
