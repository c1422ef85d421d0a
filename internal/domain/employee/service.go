package employee

import "context"

// ApprovalService is the supervised approval workflow over the pair
// (account status, profile status).
type ApprovalService interface {
	// SubmitProfile creates the profile (first submission) or resubmits after
	// a rejection. Account moves to PENDING, profile to EN_ATTENTE.
	SubmitProfile(ctx context.Context, req SubmitProfileRequest) (ProfileResponse, error)

	// Approve moves (PENDING, EN_ATTENTE) to (ACTIVE, APPROUVE) atomically,
	// clearing any prior rejection reason and writing a Decision row.
	Approve(ctx context.Context, req ApproveRequest) (ProfileResponse, error)

	// Reject requires a non-empty reason and moves the pair to
	// (REJECTED, REJETE) atomically, writing a Decision row.
	Reject(ctx context.Context, req RejectRequest) (ProfileResponse, error)

	// GetMyProfile returns the caller's own profile.
	GetMyProfile(ctx context.Context) (ProfileResponse, error)

	// GetProfile returns a profile by id (approver only).
	GetProfile(ctx context.Context, profileID string) (ProfileResponse, error)

	ListProfiles(ctx context.Context, filter ProfileFilter) (ListProfilesResponse, error)

	// ListDecisions returns the append-only decision history of a profile.
	ListDecisions(ctx context.Context, profileID string) ([]DecisionResponse, error)
}
