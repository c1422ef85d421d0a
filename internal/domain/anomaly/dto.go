package anomaly

import (
	"time"

	"github.com/pointage-hq/pointage-backend-go/internal/pkg/validator"
)

type ResolveRequest struct {
	AnomalyID  string `json:"-"`
	Status     Status `json:"status"`
	Resolution string `json:"resolution"`

	ResolverID string `json:"-"`
}

func (r ResolveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AnomalyID) {
		errs = append(errs, validator.ValidationError{Field: "anomaly_id", Message: "anomaly id is required"})
	}
	if !ValidResolutionStatus(r.Status) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be RESOLVED, DISMISSED or INVESTIGATING"})
	}
	if r.Status != StatusInvestigating && validator.IsEmpty(r.Resolution) {
		errs = append(errs, validator.ValidationError{Field: "resolution", Message: "resolution note is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Filter struct {
	UserID   *string
	Status   *string
	Severity *string
	Page     int
	Limit    int
}

func (f Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{
		string(StatusPending), string(StatusInvestigating), string(StatusResolved), string(StatusDismissed),
	}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "invalid anomaly status"})
	}
	if f.Severity != nil && !validator.IsInSlice(*f.Severity, []string{
		string(SeverityLow), string(SeverityNormal), string(SeverityHigh), string(SeverityUrgent),
	}) {
		errs = append(errs, validator.ValidationError{Field: "severity", Message: "invalid anomaly severity"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AnomalyResponse struct {
	ID             string  `json:"id"`
	SessionID      *string `json:"session_id,omitempty"`
	UserID         string  `json:"user_id"`
	UserName       *string `json:"user_name,omitempty"`
	Rule           string  `json:"rule"`
	Description    string  `json:"description"`
	Severity       string  `json:"severity"`
	Status         string  `json:"status"`
	ResolvedBy     *string `json:"resolved_by,omitempty"`
	ResolutionNote *string `json:"resolution_note,omitempty"`
	ResolvedAt     *string `json:"resolved_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type ListAnomaliesResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Anomalies  []AnomalyResponse `json:"anomalies"`
}

// ResolutionUpdate carries an approver decision to the repository.
type ResolutionUpdate struct {
	AnomalyID      string
	Status         Status
	ResolvedBy     string
	ResolutionNote *string
	ResolvedAt     time.Time
}
