package anomaly

import "errors"

// Anomaly domain errors
var (
	ErrAnomalyNotFound        = errors.New("anomaly not found")
	ErrInvalidResolutionState = errors.New("resolution status must be RESOLVED, DISMISSED or INVESTIGATING")
)
