package anomaly

import "context"

// AnomalyRepository defines data access methods for anomaly records.
type AnomalyRepository interface {
	Create(ctx context.Context, anomaly Anomaly) (Anomaly, error)

	GetByID(ctx context.Context, id string) (Anomaly, error)

	// UpdateResolution records an approver decision on a pending anomaly.
	UpdateResolution(ctx context.Context, update ResolutionUpdate) (Anomaly, error)

	List(ctx context.Context, filter Filter) ([]Anomaly, int64, error)
}
