package account

import "time"

type Role string

const (
	RoleUser       Role = "USER"        // Regular employee
	RoleRH         Role = "RH"          // Human resources - approves profiles, resolves anomalies
	RoleSuperAdmin Role = "SUPER_ADMIN" // Full access
)

type Status string

const (
	StatusInactive  Status = "INACTIVE"  // Registered, profile not yet submitted
	StatusPending   Status = "PENDING"   // Profile submitted, awaiting decision
	StatusActive    Status = "ACTIVE"    // Profile approved
	StatusRejected  Status = "REJECTED"  // Profile rejected, may resubmit
	StatusSuspended Status = "SUSPENDED" // Disabled by an admin
)

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsApprover checks if the account may approve/reject profiles and resolve
// anomalies.
func (a *Account) IsApprover() bool {
	return a.Role == RoleRH || a.Role == RoleSuperAdmin
}

// CanCheckIn checks if the account may record attendance events.
func (a *Account) CanCheckIn() bool {
	return a.Status == StatusActive
}

// IsApproverRole reports whether role carries approval rights.
func IsApproverRole(role Role) bool {
	return role == RoleRH || role == RoleSuperAdmin
}

// ValidRole reports whether role is a known role.
func ValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleRH, RoleSuperAdmin:
		return true
	}
	return false
}

// ValidStatus reports whether status is a known account status.
func ValidStatus(status Status) bool {
	switch status {
	case StatusInactive, StatusPending, StatusActive, StatusRejected, StatusSuspended:
		return true
	}
	return false
}
