package employee

import "time"

// ProfileStatus is the lifecycle state of an employee profile. It maps onto
// the owning account's status (see the approval workflow):
//
//	EN_ATTENTE <-> account PENDING
//	APPROUVE   <-> account ACTIVE
//	REJETE     <-> account REJECTED
type ProfileStatus string

const (
	StatusEnAttente ProfileStatus = "EN_ATTENTE"
	StatusApprouve  ProfileStatus = "APPROUVE"
	StatusRejete    ProfileStatus = "REJETE"
)

// Profile is the employee profile, 1:1 with an account once submitted.
type Profile struct {
	ID              string
	UserID          string
	FullName        string
	Position        *string
	Department      *string
	Phone           *string
	Status          ProfileStatus
	RejectionReason *string
	SubmittedAt     time.Time
	DecidedBy       *string
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	Email *string
}

type DecisionKind string

const (
	DecisionApproved DecisionKind = "APPROVED"
	DecisionRejected DecisionKind = "REJECTED"
)

// Decision is an immutable record of an approve/reject action on a profile.
// Rows are never updated or deleted.
type Decision struct {
	ID        string
	ProfileID string
	DeciderID string
	Decision  DecisionKind
	Reason    *string
	Comments  *string
	CreatedAt time.Time

	// DTO
	DeciderName *string
}
