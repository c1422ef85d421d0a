package audit

import "context"

// Service records and queries the audit trail. Log is deliberately
// fire-and-forget: a lost audit entry is preferable to blocking an attendance
// or approval operation, so failures are reported (logged) and swallowed,
// never rolled back into the business transaction.
type Service interface {
	Log(ctx context.Context, entry Entry)

	Query(ctx context.Context, filter Filter) (ListEntriesResponse, error)
}
