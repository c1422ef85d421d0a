package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/reqinfo"
)

type ServiceImpl struct {
	repo audit.Repository
}

func NewAuditService(repo audit.Repository) audit.Service {
	return &ServiceImpl{repo: repo}
}

// Log appends an audit entry. Failures are logged and swallowed: the audit
// trail must never fail the business operation it records, so the write uses
// a detached context that survives request cancellation.
func (s *ServiceImpl) Log(ctx context.Context, entry audit.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Severity == "" {
		entry.Severity = audit.SeverityInfo
	}
	if entry.IPAddress == nil {
		entry.IPAddress = reqinfo.IPAddress(ctx)
	}
	if entry.UserAgent == nil {
		entry.UserAgent = reqinfo.UserAgent(ctx)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := s.repo.Create(writeCtx, entry); err != nil {
		slog.Error("failed to write audit entry",
			"action", entry.Action,
			"actor_id", entry.ActorID,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

func (s *ServiceImpl) Query(ctx context.Context, filter audit.Filter) (audit.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListEntriesResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return audit.ListEntriesResponse{}, err
	}

	responses := make([]audit.EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = audit.EntryResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Changes:    entry.Changes,
			Severity:   string(entry.Severity),
			IPAddress:  entry.IPAddress,
			UserAgent:  entry.UserAgent,
			CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
		}
	}

	return audit.ListEntriesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Entries:    responses,
	}, nil
}
