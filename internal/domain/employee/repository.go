package employee

import "context"

// ProfileRepository defines data access methods for employee profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile Profile) (Profile, error)

	GetByID(ctx context.Context, id string) (Profile, error)

	GetByUserID(ctx context.Context, userID string) (Profile, error)

	// GetByIDForUpdate locks the profile row for the duration of the
	// surrounding transaction. Used by approve/reject so racing deciders
	// serialize on the row.
	GetByIDForUpdate(ctx context.Context, id string) (Profile, error)

	// UpdateStatus sets the profile status, rejection reason (nil clears it)
	// and decider metadata.
	UpdateStatus(ctx context.Context, update StatusUpdate) error

	// Resubmit rewrites profile data and returns the profile to EN_ATTENTE.
	Resubmit(ctx context.Context, profile Profile) (Profile, error)

	List(ctx context.Context, filter ProfileFilter) ([]Profile, int64, error)
}

// DecisionRepository is append-only: decisions are never updated or deleted.
type DecisionRepository interface {
	Create(ctx context.Context, decision Decision) (Decision, error)

	ListByProfile(ctx context.Context, profileID string) ([]Decision, error)

	// LatestByProfile returns the most recent decision, or ErrProfileNotFound
	// mapped nil when none exists.
	LatestByProfile(ctx context.Context, profileID string) (*Decision, error)
}
