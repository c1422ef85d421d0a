package employee

import (
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/validator"
)

type SubmitProfileRequest struct {
	FullName   string  `json:"full_name"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`

	// Filled from the verified identity, not the payload.
	UserID string `json:"-"`
}

func (r SubmitProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full name is required"})
	}
	if len(r.FullName) > 150 {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full name must be at most 150 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	ProfileID string  `json:"-"`
	Comments  *string `json:"comments,omitempty"`

	ApproverID string `json:"-"`
}

func (r ApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProfileID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee id is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequest struct {
	ProfileID string  `json:"-"`
	Reason    string  `json:"reason"`
	Comments  *string `json:"comments,omitempty"`

	ApproverID string `json:"-"`
}

func (r RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProfileID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "rejection reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProfileFilter struct {
	Status   *string
	FullName *string
	Page     int
	Limit    int
}

func (f ProfileFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{
		string(StatusEnAttente), string(StatusApprouve), string(StatusRejete),
	}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "invalid profile status"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProfileResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	FullName        string  `json:"full_name"`
	Position        *string `json:"position,omitempty"`
	Department      *string `json:"department,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	SubmittedAt     string  `json:"submitted_at"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
}

type DecisionResponse struct {
	ID          string  `json:"id"`
	ProfileID   string  `json:"employee_id"`
	DeciderID   string  `json:"decider_id"`
	DeciderName *string `json:"decider_name,omitempty"`
	Decision    string  `json:"decision"`
	Reason      *string `json:"reason,omitempty"`
	Comments    *string `json:"comments,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type ListProfilesResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Profiles   []ProfileResponse `json:"profiles"`
}

// StatusUpdate carries a profile status transition performed inside the
// approval transaction.
type StatusUpdate struct {
	ProfileID       string
	Status          ProfileStatus
	RejectionReason *string // nil clears any prior reason
	DecidedBy       *string
}
