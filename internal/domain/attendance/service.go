package attendance

import "context"

// SessionManager enforces check-in/check-out ordering per session type and
// computes worked duration. Every successful event runs the anomaly checklist
// and emits exactly one audit entry.
type SessionManager interface {
	CheckIn(ctx context.Context, req CheckInRequest) (EventResponse, error)

	CheckOut(ctx context.Context, req CheckOutRequest) (EventResponse, error)

	// GetTodayStatus is a read-only projection of today's two slots.
	GetTodayStatus(ctx context.Context) (TodayStatusResponse, error)

	GetMySessions(ctx context.Context, filter MySessionFilter) (ListSessionsResponse, error)

	// ListSessions is the approver-side view across users.
	ListSessions(ctx context.Context, filter SessionFilter) (ListSessionsResponse, error)
}
