package account

import "context"

// AccountRepository defines data access methods for accounts.
type AccountRepository interface {
	Create(ctx context.Context, acc Account) (Account, error)

	GetByID(ctx context.Context, id string) (Account, error)

	GetByEmail(ctx context.Context, email string) (Account, error)

	// UpdateStatus moves an account between lifecycle states. Only the
	// approval workflow and explicit admin actions call this.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// ListIDsByRole returns account ids holding the given role, used for
	// notification fan-out to approvers.
	ListIDsByRole(ctx context.Context, role Role) ([]string, error)
}
