package audit

import "context"

// Repository is append-only; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)

	// List returns entries newest-first.
	List(ctx context.Context, filter Filter) ([]Entry, int64, error)
}
