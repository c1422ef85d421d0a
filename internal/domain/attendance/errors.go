package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn   = errors.New("already checked in for this session today")
	ErrNoOpenCheckIn      = errors.New("no open check-in for this session today")
	ErrAlreadyCheckedOut  = errors.New("already checked out for this session today")
	ErrInvalidSessionType = errors.New("session type must be MORNING or AFTERNOON")
	ErrSessionNotFound    = errors.New("attendance session not found")
)
