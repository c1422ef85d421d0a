package attendance

import (
	"context"
	"time"
)

// SessionRepository defines data access methods for attendance sessions.
type SessionRepository interface {
	// Create inserts a new session with its check-in timestamp. The unique
	// index on (user_id, date, session_type) makes concurrent duplicate
	// check-ins resolve deterministically: the loser gets
	// ErrAlreadyCheckedIn.
	Create(ctx context.Context, session Session) (Session, error)

	GetByID(ctx context.Context, id string) (Session, error)

	// GetByUserDateType returns the session for one slot, or nil when none
	// exists.
	GetByUserDateType(ctx context.Context, userID string, date time.Time, sessionType SessionType) (*Session, error)

	// Close sets the check-out timestamp and worked duration. The update is
	// conditional on check_out_at still being NULL; a lost race returns
	// ErrNoOpenCheckIn.
	Close(ctx context.Context, update CloseUpdate) (Session, error)

	// GetTodaySessions returns the morning and afternoon sessions for one
	// user and day (either may be nil).
	GetTodaySessions(ctx context.Context, userID string, date time.Time) (morning *Session, afternoon *Session, err error)

	ListByUser(ctx context.Context, userID string, filter MySessionFilter) ([]Session, int64, error)

	List(ctx context.Context, filter SessionFilter) ([]Session, int64, error)
}

// CloseUpdate carries the check-out mutation for an open session.
type CloseUpdate struct {
	SessionID         string
	CheckOutAt        time.Time
	WorkedMinutes     int
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
}
