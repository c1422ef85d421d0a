package employee

import (
	"errors"
	"fmt"
)

// Employee domain errors
var (
	ErrProfileNotFound         = errors.New("employee profile not found")
	ErrProfileAlreadySubmitted = errors.New("profile already submitted and awaiting decision")
	ErrProfileAlreadyApproved  = errors.New("profile already approved")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrSelfApproval            = errors.New("cannot approve or reject your own profile")
	ErrApproverRoleRequired    = errors.New("RH or SUPER_ADMIN role required")
	ErrNotRejected             = errors.New("profile is not in a rejected state")
)

// AlreadyDecidedError is returned when a second approver races a decision that
// has already been made; it names the decider who acted first.
type AlreadyDecidedError struct {
	ProfileID string
	DeciderID string
	Decision  DecisionKind
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("profile %s already %s by %s", e.ProfileID, e.Decision, e.DeciderID)
}
