package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
)

type ServiceImpl struct {
	repo       anomaly.AnomalyRepository
	auditor    audit.Service
	dispatcher notification.Dispatcher
}

func NewAnomalyService(repo anomaly.AnomalyRepository, auditor audit.Service, dispatcher notification.Dispatcher) anomaly.Service {
	return &ServiceImpl{repo: repo, auditor: auditor, dispatcher: dispatcher}
}

func approverFromContext(ctx context.Context) (userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	role, ok := claims["role"].(string)
	if !ok || !account.IsApproverRole(account.Role(role)) {
		return "", employee.ErrApproverRoleRequired
	}

	return userID, nil
}

func (s *ServiceImpl) Resolve(ctx context.Context, req anomaly.ResolveRequest) (anomaly.AnomalyResponse, error) {
	if err := req.Validate(); err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	resolverID, err := approverFromContext(ctx)
	if err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	// Existence check first so a missing id is not reported as a state error.
	existing, err := s.repo.GetByID(ctx, req.AnomalyID)
	if err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	var note *string
	if req.Resolution != "" {
		note = &req.Resolution
	}

	updated, err := s.repo.UpdateResolution(ctx, anomaly.ResolutionUpdate{
		AnomalyID:      req.AnomalyID,
		Status:         req.Status,
		ResolvedBy:     resolverID,
		ResolutionNote: note,
		ResolvedAt:     time.Now().UTC(),
	})
	if err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	s.auditor.Log(ctx, audit.Entry{
		ActorID:    resolverID,
		Action:     audit.ActionAnomalyResolved,
		EntityType: "anomaly",
		EntityID:   updated.ID,
		Changes: map[string]interface{}{
			"status": map[string]interface{}{"from": string(existing.Status), "to": string(updated.Status)},
			"rule":   updated.Rule,
		},
		Severity: audit.SeverityInfo,
	})

	if updated.Status == anomaly.StatusResolved || updated.Status == anomaly.StatusDismissed {
		err := s.dispatcher.Dispatch(ctx, notification.CreateNotificationRequest{
			RecipientID: updated.UserID,
			SenderID:    &resolverID,
			Type:        notification.TypeAnomalyResolved,
			Title:       "Attendance anomaly reviewed",
			Message:     fmt.Sprintf("Your %s anomaly has been %s.", updated.Rule, updated.Status),
			Priority:    notification.PriorityNormal,
			Data:        map[string]interface{}{"anomaly_id": updated.ID, "status": string(updated.Status)},
		})
		if err != nil {
			slog.Error("failed to dispatch anomaly resolution notification", "anomaly_id", updated.ID, "error", err)
		}
	}

	return toResponse(updated), nil
}

func (s *ServiceImpl) GetAnomaly(ctx context.Context, id string) (anomaly.AnomalyResponse, error) {
	if _, err := approverFromContext(ctx); err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return anomaly.AnomalyResponse{}, err
	}

	return toResponse(a), nil
}

func (s *ServiceImpl) ListAnomalies(ctx context.Context, filter anomaly.Filter) (anomaly.ListAnomaliesResponse, error) {
	if _, err := approverFromContext(ctx); err != nil {
		return anomaly.ListAnomaliesResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return anomaly.ListAnomaliesResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	anomalies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return anomaly.ListAnomaliesResponse{}, err
	}

	responses := make([]anomaly.AnomalyResponse, len(anomalies))
	for i, a := range anomalies {
		responses[i] = toResponse(a)
	}

	return anomaly.ListAnomaliesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Anomalies:  responses,
	}, nil
}

func toResponse(a anomaly.Anomaly) anomaly.AnomalyResponse {
	resp := anomaly.AnomalyResponse{
		ID:             a.ID,
		SessionID:      a.SessionID,
		UserID:         a.UserID,
		UserName:       a.UserName,
		Rule:           a.Rule,
		Description:    a.Description,
		Severity:       string(a.Severity),
		Status:         string(a.Status),
		ResolvedBy:     a.ResolvedBy,
		ResolutionNote: a.ResolutionNote,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
	if a.ResolvedAt != nil {
		resolvedAt := a.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolvedAt
	}
	return resp
}
