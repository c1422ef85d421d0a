package response

import (
	"errors"
	"net/http"

	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/attendance"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/auth"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A lost approval race names the decider who acted first.
	var alreadyDecided *employee.AlreadyDecidedError
	if errors.As(err, &alreadyDecided) {
		ConflictWithDetails(w, "Profile already decided", map[string]string{
			"decided_by": alreadyDecided.DeciderID,
			"decision":   string(alreadyDecided.Decision),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Account domain errors
	case errors.Is(err, account.ErrAccountNotFound):
		NotFound(w, "Account not found")
	case errors.Is(err, account.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, account.ErrAccountSuspended):
		Forbidden(w, "Account is suspended")
	case errors.Is(err, account.ErrAccountInactive):
		Forbidden(w, "Account is not active")

	// Employee domain errors
	case errors.Is(err, employee.ErrProfileNotFound):
		NotFound(w, "Employee profile not found")
	case errors.Is(err, employee.ErrProfileAlreadySubmitted):
		Conflict(w, "Profile already submitted and awaiting decision")
	case errors.Is(err, employee.ErrProfileAlreadyApproved):
		Conflict(w, "Profile already approved")
	case errors.Is(err, employee.ErrSelfApproval):
		Forbidden(w, "Cannot decide on your own profile")
	case errors.Is(err, employee.ErrApproverRoleRequired):
		Forbidden(w, "RH or SUPER_ADMIN role required")
	case errors.Is(err, employee.ErrRejectionReasonRequired):
		BadRequest(w, "Rejection reason is required", nil)
	case errors.Is(err, employee.ErrNotRejected):
		Conflict(w, "Profile is not in a rejected state")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this session today")
	case errors.Is(err, attendance.ErrNoOpenCheckIn):
		Conflict(w, "No open check-in for this session today")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out for this session today")
	case errors.Is(err, attendance.ErrInvalidSessionType):
		BadRequest(w, "Session type must be MORNING or AFTERNOON", nil)
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, "Attendance session not found")

	// Anomaly domain errors
	case errors.Is(err, anomaly.ErrAnomalyNotFound):
		NotFound(w, "Anomaly not found")
	case errors.Is(err, anomaly.ErrInvalidResolutionState):
		Conflict(w, "Anomaly has already been resolved")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
