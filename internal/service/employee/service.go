package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/database"
)

// ApprovalServiceImpl drives the supervised approval workflow. Every decision
// mutates the (account status, profile status) pair in one transaction; the
// decision history is append-only.
type ApprovalServiceImpl struct {
	tx         database.Transactor
	profiles   employee.ProfileRepository
	decisions  employee.DecisionRepository
	accounts   account.AccountRepository
	auditor    audit.Service
	dispatcher notification.Dispatcher
}

func NewApprovalService(
	tx database.Transactor,
	profiles employee.ProfileRepository,
	decisions employee.DecisionRepository,
	accounts account.AccountRepository,
	auditor audit.Service,
	dispatcher notification.Dispatcher,
) employee.ApprovalService {
	return &ApprovalServiceImpl{
		tx:         tx,
		profiles:   profiles,
		decisions:  decisions,
		accounts:   accounts,
		auditor:    auditor,
		dispatcher: dispatcher,
	}
}

func userFromContext(ctx context.Context) (userID string, role account.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", fmt.Errorf("role claim is missing or invalid")
	}

	return userID, account.Role(roleStr), nil
}

func approverFromContext(ctx context.Context) (string, error) {
	userID, role, err := userFromContext(ctx)
	if err != nil {
		return "", err
	}
	if !account.IsApproverRole(role) {
		return "", employee.ErrApproverRoleRequired
	}
	return userID, nil
}

// SubmitProfile creates the profile on first submission or resubmits after a
// rejection. Either way the account lands in PENDING and the profile in
// EN_ATTENTE atomically.
func (s *ApprovalServiceImpl) SubmitProfile(ctx context.Context, req employee.SubmitProfileRequest) (employee.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.ProfileResponse{}, err
	}

	userID, _, err := userFromContext(ctx)
	if err != nil {
		return employee.ProfileResponse{}, err
	}
	req.UserID = userID

	existing, err := s.profiles.GetByUserID(ctx, userID)
	firstSubmission := false
	switch {
	case errors.Is(err, employee.ErrProfileNotFound):
		firstSubmission = true
	case err != nil:
		return employee.ProfileResponse{}, err
	case existing.Status == employee.StatusEnAttente:
		return employee.ProfileResponse{}, employee.ErrProfileAlreadySubmitted
	case existing.Status == employee.StatusApprouve:
		return employee.ProfileResponse{}, employee.ErrProfileAlreadyApproved
	}

	var saved employee.Profile
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		if firstSubmission {
			saved, txErr = s.profiles.Create(ctx, employee.Profile{
				ID:          uuid.New().String(),
				UserID:      userID,
				FullName:    req.FullName,
				Position:    req.Position,
				Department:  req.Department,
				Phone:       req.Phone,
				Status:      employee.StatusEnAttente,
				SubmittedAt: time.Now().UTC(),
			})
		} else {
			existing.FullName = req.FullName
			existing.Position = req.Position
			existing.Department = req.Department
			existing.Phone = req.Phone
			saved, txErr = s.profiles.Resubmit(ctx, existing)
		}
		if txErr != nil {
			return txErr
		}

		return s.accounts.UpdateStatus(ctx, userID, account.StatusPending)
	})
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	action := audit.ActionProfileSubmitted
	if !firstSubmission {
		action = audit.ActionProfileResubmitted
	}
	s.auditor.Log(ctx, audit.Entry{
		ActorID:    userID,
		Action:     action,
		EntityType: "employee_profile",
		EntityID:   saved.ID,
		Changes: map[string]interface{}{
			"status": string(saved.Status),
		},
		Severity: audit.SeverityInfo,
	})

	s.notifyApprovers(ctx, saved, firstSubmission)

	return toProfileResponse(saved), nil
}

func (s *ApprovalServiceImpl) notifyApprovers(ctx context.Context, profile employee.Profile, first bool) {
	approverIDs, err := s.accounts.ListIDsByRole(ctx, account.RoleRH)
	if err != nil {
		slog.Error("failed to resolve profile submission recipients", "error", err)
		return
	}
	if len(approverIDs) == 0 {
		return
	}

	message := fmt.Sprintf("%s submitted a profile for review.", profile.FullName)
	if !first {
		message = fmt.Sprintf("%s resubmitted a profile after rejection.", profile.FullName)
	}

	err = s.dispatcher.DispatchToMany(ctx, approverIDs, notification.CreateNotificationRequest{
		SenderID: &profile.UserID,
		Type:     notification.TypeProfileSubmitted,
		Title:    "Profile awaiting review",
		Message:  message,
		Priority: notification.PriorityNormal,
		Data:     map[string]interface{}{"employee_id": profile.ID},
	})
	if err != nil {
		slog.Error("failed to dispatch profile submission notifications", "employee_id", profile.ID, "error", err)
	}
}

// Approve moves (PENDING, EN_ATTENTE) to (ACTIVE, APPROUVE). The profile row
// is locked for the duration of the transaction so racing deciders serialize;
// the loser gets an AlreadyDecidedError naming whoever acted first.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, req employee.ApproveRequest) (employee.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.ProfileResponse{}, err
	}

	approverID, err := approverFromContext(ctx)
	if err != nil {
		return employee.ProfileResponse{}, err
	}
	req.ApproverID = approverID

	profile, _, err := s.decide(ctx, req.ProfileID, approverID, employee.DecisionApproved, nil, req.Comments)
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	s.auditor.Log(ctx, audit.Entry{
		ActorID:    approverID,
		Action:     audit.ActionProfileApproved,
		EntityType: "employee_profile",
		EntityID:   profile.ID,
		Changes: map[string]interface{}{
			"status":  map[string]interface{}{"from": string(employee.StatusEnAttente), "to": string(employee.StatusApprouve)},
			"account": map[string]interface{}{"from": string(account.StatusPending), "to": string(account.StatusActive)},
		},
		Severity: audit.SeverityInfo,
	})

	s.notifyDecision(ctx, profile, approverID, employee.DecisionApproved, nil)

	return toProfileResponse(profile), nil
}

// Reject moves the pair to (REJECTED, REJETE), from EN_ATTENTE or from
// APPROUVE (a rejection may revoke a prior approval). A non-empty reason is
// mandatory and is stored on both the profile and the decision row.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, req employee.RejectRequest) (employee.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.ProfileResponse{}, err
	}

	approverID, err := approverFromContext(ctx)
	if err != nil {
		return employee.ProfileResponse{}, err
	}
	req.ApproverID = approverID

	profile, prior, err := s.decide(ctx, req.ProfileID, approverID, employee.DecisionRejected, &req.Reason, req.Comments)
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	s.auditor.Log(ctx, audit.Entry{
		ActorID:    approverID,
		Action:     audit.ActionProfileRejected,
		EntityType: "employee_profile",
		EntityID:   profile.ID,
		Changes: map[string]interface{}{
			"status": map[string]interface{}{"from": string(prior), "to": string(employee.StatusRejete)},
			"reason": req.Reason,
		},
		Severity: audit.SeverityWarning,
	})

	s.notifyDecision(ctx, profile, approverID, employee.DecisionRejected, &req.Reason)

	return toProfileResponse(profile), nil
}

// decide is the shared transactional core of Approve and Reject. It returns
// the updated profile and the status it transitioned from. Approve only
// applies to EN_ATTENTE; Reject also applies to APPROUVE, revoking the
// approval.
func (s *ApprovalServiceImpl) decide(ctx context.Context, profileID, deciderID string, kind employee.DecisionKind, reason, comments *string) (employee.Profile, employee.ProfileStatus, error) {
	var decided employee.Profile
	var prior employee.ProfileStatus

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := s.profiles.GetByIDForUpdate(ctx, profileID)
		if err != nil {
			return err
		}

		if profile.UserID == deciderID {
			return employee.ErrSelfApproval
		}

		rejectingApproved := kind == employee.DecisionRejected && profile.Status == employee.StatusApprouve
		if profile.Status != employee.StatusEnAttente && !rejectingApproved {
			priorKind := employee.DecisionApproved
			if profile.Status == employee.StatusRejete {
				priorKind = employee.DecisionRejected
			}
			priorDecider := ""
			if profile.DecidedBy != nil {
				priorDecider = *profile.DecidedBy
			}
			return &employee.AlreadyDecidedError{
				ProfileID: profile.ID,
				DeciderID: priorDecider,
				Decision:  priorKind,
			}
		}
		prior = profile.Status

		profileStatus := employee.StatusApprouve
		accountStatus := account.StatusActive
		if kind == employee.DecisionRejected {
			profileStatus = employee.StatusRejete
			accountStatus = account.StatusRejected
		}

		err = s.profiles.UpdateStatus(ctx, employee.StatusUpdate{
			ProfileID:       profile.ID,
			Status:          profileStatus,
			RejectionReason: reason,
			DecidedBy:       &deciderID,
		})
		if err != nil {
			return err
		}

		if err := s.accounts.UpdateStatus(ctx, profile.UserID, accountStatus); err != nil {
			return err
		}

		if _, err := s.decisions.Create(ctx, employee.Decision{
			ID:        uuid.New().String(),
			ProfileID: profile.ID,
			DeciderID: deciderID,
			Decision:  kind,
			Reason:    reason,
			Comments:  comments,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		profile.Status = profileStatus
		profile.RejectionReason = reason
		profile.DecidedBy = &deciderID
		profile.DecidedAt = &now
		decided = profile
		return nil
	})
	if err != nil {
		return employee.Profile{}, "", err
	}

	return decided, prior, nil
}

func (s *ApprovalServiceImpl) notifyDecision(ctx context.Context, profile employee.Profile, deciderID string, kind employee.DecisionKind, reason *string) {
	notifType := notification.TypeProfileApproved
	title := "Profile approved"
	message := "Your profile has been approved. You can now record attendance."
	if kind == employee.DecisionRejected {
		notifType = notification.TypeProfileRejected
		title = "Profile rejected"
		message = "Your profile was rejected. Please review the reason and resubmit."
	}

	data := map[string]interface{}{"employee_id": profile.ID}
	if reason != nil {
		data["reason"] = *reason
	}

	err := s.dispatcher.Dispatch(ctx, notification.CreateNotificationRequest{
		RecipientID: profile.UserID,
		SenderID:    &deciderID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Priority:    notification.PriorityHigh,
		Data:        data,
	})
	if err != nil {
		slog.Error("failed to dispatch decision notification", "employee_id", profile.ID, "error", err)
	}
}

func (s *ApprovalServiceImpl) GetMyProfile(ctx context.Context) (employee.ProfileResponse, error) {
	userID, _, err := userFromContext(ctx)
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	return toProfileResponse(profile), nil
}

func (s *ApprovalServiceImpl) GetProfile(ctx context.Context, profileID string) (employee.ProfileResponse, error) {
	if _, err := approverFromContext(ctx); err != nil {
		return employee.ProfileResponse{}, err
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	return toProfileResponse(profile), nil
}

func (s *ApprovalServiceImpl) ListProfiles(ctx context.Context, filter employee.ProfileFilter) (employee.ListProfilesResponse, error) {
	if _, err := approverFromContext(ctx); err != nil {
		return employee.ListProfilesResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListProfilesResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	profiles, total, err := s.profiles.List(ctx, filter)
	if err != nil {
		return employee.ListProfilesResponse{}, err
	}

	responses := make([]employee.ProfileResponse, len(profiles))
	for i, p := range profiles {
		responses[i] = toProfileResponse(p)
	}

	return employee.ListProfilesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Profiles:   responses,
	}, nil
}

func (s *ApprovalServiceImpl) ListDecisions(ctx context.Context, profileID string) ([]employee.DecisionResponse, error) {
	if _, err := approverFromContext(ctx); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetByID(ctx, profileID); err != nil {
		return nil, err
	}

	decisions, err := s.decisions.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.DecisionResponse, len(decisions))
	for i, d := range decisions {
		responses[i] = employee.DecisionResponse{
			ID:          d.ID,
			ProfileID:   d.ProfileID,
			DeciderID:   d.DeciderID,
			DeciderName: d.DeciderName,
			Decision:    string(d.Decision),
			Reason:      d.Reason,
			Comments:    d.Comments,
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		}
	}

	return responses, nil
}

func toProfileResponse(p employee.Profile) employee.ProfileResponse {
	resp := employee.ProfileResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		FullName:        p.FullName,
		Position:        p.Position,
		Department:      p.Department,
		Phone:           p.Phone,
		Email:           p.Email,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
		SubmittedAt:     p.SubmittedAt.Format(time.RFC3339),
		DecidedBy:       p.DecidedBy,
	}
	if p.DecidedAt != nil {
		decidedAt := p.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	return resp
}
