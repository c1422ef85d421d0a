package attendance

import (
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/validator"
)

// Verification is the opaque payload supplied by the biometric/geolocation
// collaborator. The core only thresholds and records it.
type Verification struct {
	PhotoURL          *string  `json:"photo,omitempty"`
	DeviceFingerprint *string  `json:"device_fingerprint,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	FaceVerified      *bool    `json:"face_verified,omitempty"`
	VerificationScore *float64 `json:"verification_score,omitempty"`
}

func (v Verification) Validate() error {
	var errs validator.ValidationErrors

	if (v.Latitude == nil) != (v.Longitude == nil) {
		errs = append(errs, validator.ValidationError{Field: "geolocation", Message: "latitude and longitude must be supplied together"})
	}
	if v.Latitude != nil && v.Longitude != nil && !validator.IsValidCoordinate(*v.Latitude, *v.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "geolocation", Message: "coordinates out of range"})
	}
	if v.VerificationScore != nil && (*v.VerificationScore < 0 || *v.VerificationScore > 1) {
		errs = append(errs, validator.ValidationError{Field: "verification_score", Message: "score must be between 0 and 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckInRequest struct {
	SessionType  SessionType   `json:"session_type"`
	Verification *Verification `json:"verification,omitempty"`

	// Filled from the verified identity, not the payload.
	UserID string `json:"-"`
}

func (r CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if !ValidSessionType(r.SessionType) {
		errs = append(errs, validator.ValidationError{Field: "session_type", Message: "must be MORNING or AFTERNOON"})
	}
	if r.Verification != nil {
		if err := r.Verification.Validate(); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				errs = append(errs, verrs...)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	SessionType  SessionType   `json:"session_type"`
	Verification *Verification `json:"verification,omitempty"`

	UserID string `json:"-"`
}

func (r CheckOutRequest) Validate() error {
	return CheckInRequest{SessionType: r.SessionType, Verification: r.Verification}.Validate()
}

// SessionResponse is the wire shape of one attendance session.
type SessionResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserName        *string  `json:"user_name,omitempty"`
	Date            string   `json:"date"`
	SessionType     string   `json:"session_type"`
	Status          string   `json:"status"`
	CheckInAt       *string  `json:"check_in_at,omitempty"`
	CheckOutAt      *string  `json:"check_out_at,omitempty"`
	WorkedMinutes   *int     `json:"worked_minutes,omitempty"`
	AnomalyDetected bool     `json:"anomaly_detected"`
	AnomalyReasons  []string `json:"anomaly_reasons,omitempty"`
}

// EventResponse wraps a check-in/check-out result.
type EventResponse struct {
	Session SessionResponse `json:"session"`
}

// SlotStatus is the projection of one session slot for today.
type SlotStatus struct {
	HasCheckedIn  bool    `json:"has_checked_in"`
	HasCheckedOut bool    `json:"has_checked_out"`
	CheckInTime   *string `json:"check_in_time,omitempty"`
	CheckOutTime  *string `json:"check_out_time,omitempty"`
}

type TodayStatusResponse struct {
	Date      string     `json:"date"`
	Morning   SlotStatus `json:"morning"`
	Afternoon SlotStatus `json:"afternoon"`
}

type MySessionFilter struct {
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

func (f MySessionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SessionFilter struct {
	UserID    *string
	Date      *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

func (f SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, value := range map[string]*string{
		"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate,
	} {
		if value != nil {
			if _, ok := validator.IsValidDate(*value); !ok {
				errs = append(errs, validator.ValidationError{Field: field, Message: "must be YYYY-MM-DD"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Sessions   []SessionResponse `json:"sessions"`
}
