package employee

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProfileRepo struct {
	byID     map[string]*employee.Profile
	byUserID map[string]*employee.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		byID:     make(map[string]*employee.Profile),
		byUserID: make(map[string]*employee.Profile),
	}
}

func (f *fakeProfileRepo) put(p employee.Profile) {
	stored := p
	f.byID[p.ID] = &stored
	f.byUserID[p.UserID] = &stored
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile employee.Profile) (employee.Profile, error) {
	if _, exists := f.byUserID[profile.UserID]; exists {
		return employee.Profile{}, employee.ErrProfileAlreadySubmitted
	}
	profile.CreatedAt = time.Now()
	f.put(profile)
	return profile, nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	if p, ok := f.byID[id]; ok {
		return *p, nil
	}
	return employee.Profile{}, employee.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (employee.Profile, error) {
	if p, ok := f.byUserID[userID]; ok {
		return *p, nil
	}
	return employee.Profile{}, employee.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByIDForUpdate(ctx context.Context, id string) (employee.Profile, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProfileRepo) UpdateStatus(ctx context.Context, update employee.StatusUpdate) error {
	p, ok := f.byID[update.ProfileID]
	if !ok {
		return employee.ErrProfileNotFound
	}
	now := time.Now().UTC()
	p.Status = update.Status
	p.RejectionReason = update.RejectionReason
	p.DecidedBy = update.DecidedBy
	p.DecidedAt = &now
	return nil
}

func (f *fakeProfileRepo) Resubmit(ctx context.Context, profile employee.Profile) (employee.Profile, error) {
	p, ok := f.byID[profile.ID]
	if !ok {
		return employee.Profile{}, employee.ErrProfileNotFound
	}
	p.FullName = profile.FullName
	p.Position = profile.Position
	p.Department = profile.Department
	p.Phone = profile.Phone
	p.Status = employee.StatusEnAttente
	p.RejectionReason = nil
	p.DecidedBy = nil
	p.DecidedAt = nil
	p.SubmittedAt = time.Now().UTC()
	return *p, nil
}

func (f *fakeProfileRepo) List(ctx context.Context, filter employee.ProfileFilter) ([]employee.Profile, int64, error) {
	var out []employee.Profile
	for _, p := range f.byID {
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type fakeDecisionRepo struct {
	decisions []employee.Decision
}

func (f *fakeDecisionRepo) Create(ctx context.Context, decision employee.Decision) (employee.Decision, error) {
	decision.CreatedAt = time.Now().UTC()
	f.decisions = append(f.decisions, decision)
	return decision, nil
}

func (f *fakeDecisionRepo) ListByProfile(ctx context.Context, profileID string) ([]employee.Decision, error) {
	var out []employee.Decision
	for _, d := range f.decisions {
		if d.ProfileID == profileID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDecisionRepo) LatestByProfile(ctx context.Context, profileID string) (*employee.Decision, error) {
	list, _ := f.ListByProfile(ctx, profileID)
	if len(list) == 0 {
		return nil, nil
	}
	latest := list[len(list)-1]
	return &latest, nil
}

type fakeAccountRepo struct {
	statuses    map[string]account.Status
	approverIDs []string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		statuses:    make(map[string]account.Status),
		approverIDs: []string{"rh-1"},
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, acc account.Account) (account.Account, error) {
	return acc, nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	return account.Account{}, account.ErrAccountNotFound
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return account.Account{}, account.ErrAccountNotFound
}

func (f *fakeAccountRepo) UpdateStatus(ctx context.Context, id string, status account.Status) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeAccountRepo) ListIDsByRole(ctx context.Context, role account.Role) ([]string, error) {
	return f.approverIDs, nil
}

type stubAuditor struct {
	entries []audit.Entry
}

func (s *stubAuditor) Log(ctx context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

func (s *stubAuditor) Query(ctx context.Context, filter audit.Filter) (audit.ListEntriesResponse, error) {
	return audit.ListEntriesResponse{}, nil
}

type stubDispatcher struct {
	dispatched []notification.CreateNotificationRequest
}

func (s *stubDispatcher) Dispatch(ctx context.Context, req notification.CreateNotificationRequest) error {
	s.dispatched = append(s.dispatched, req)
	return nil
}

func (s *stubDispatcher) DispatchToMany(ctx context.Context, recipientIDs []string, req notification.CreateNotificationRequest) error {
	for _, id := range recipientIDs {
		r := req
		r.RecipientID = id
		s.dispatched = append(s.dispatched, r)
	}
	return nil
}

func (s *stubDispatcher) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (s *stubDispatcher) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *stubDispatcher) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (s *stubDispatcher) Delete(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (s *stubDispatcher) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() { close(ch) }
}

func (s *stubDispatcher) Stop() {}

type approvalFixture struct {
	service    employee.ApprovalService
	profiles   *fakeProfileRepo
	decisions  *fakeDecisionRepo
	accounts   *fakeAccountRepo
	auditor    *stubAuditor
	dispatcher *stubDispatcher
}

func newApprovalFixture() approvalFixture {
	profiles := newFakeProfileRepo()
	decisions := &fakeDecisionRepo{}
	accounts := newFakeAccountRepo()
	auditor := &stubAuditor{}
	dispatcher := &stubDispatcher{}
	return approvalFixture{
		service:    NewApprovalService(fakeTransactor{}, profiles, decisions, accounts, auditor, dispatcher),
		profiles:   profiles,
		decisions:  decisions,
		accounts:   accounts,
		auditor:    auditor,
		dispatcher: dispatcher,
	}
}

func authedContext(t *testing.T, userID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":        userID,
		"role":           role,
		"account_status": "ACTIVE",
		"type":           "access",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func seedPendingProfile(f approvalFixture, profileID, userID string) {
	f.profiles.put(employee.Profile{
		ID:          profileID,
		UserID:      userID,
		FullName:    "Jane Doe",
		Status:      employee.StatusEnAttente,
		SubmittedAt: time.Now().UTC(),
	})
}

func TestApprovalService_SubmitProfile_First(t *testing.T) {
	f := newApprovalFixture()
	ctx := authedContext(t, "user-1", "USER")

	resp, err := f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{FullName: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, string(employee.StatusEnAttente), resp.Status)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, account.StatusPending, f.accounts.statuses["user-1"])

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, audit.ActionProfileSubmitted, f.auditor.entries[0].Action)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "rh-1", f.dispatcher.dispatched[0].RecipientID)
	assert.Equal(t, notification.TypeProfileSubmitted, f.dispatcher.dispatched[0].Type)
}

func TestApprovalService_SubmitProfile_MissingName(t *testing.T) {
	f := newApprovalFixture()
	ctx := authedContext(t, "user-1", "USER")

	_, err := f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{})
	require.Error(t, err)
}

func TestApprovalService_SubmitProfile_AlreadyPending(t *testing.T) {
	f := newApprovalFixture()
	ctx := authedContext(t, "user-1", "USER")

	_, err := f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{FullName: "Jane Doe"})
	require.NoError(t, err)

	_, err = f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{FullName: "Jane Doe"})
	assert.ErrorIs(t, err, employee.ErrProfileAlreadySubmitted)
}

func TestApprovalService_SubmitProfile_ResubmitAfterRejection(t *testing.T) {
	f := newApprovalFixture()
	deciderID := "rh-1"
	reason := "incomplete"
	f.profiles.put(employee.Profile{
		ID:              "profile-1",
		UserID:          "user-1",
		FullName:        "Jane Doe",
		Status:          employee.StatusRejete,
		RejectionReason: &reason,
		DecidedBy:       &deciderID,
		SubmittedAt:     time.Now().UTC(),
	})
	ctx := authedContext(t, "user-1", "USER")

	resp, err := f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{FullName: "Jane B. Doe"})
	require.NoError(t, err)

	assert.Equal(t, string(employee.StatusEnAttente), resp.Status)
	assert.Equal(t, "Jane B. Doe", resp.FullName)
	assert.Nil(t, resp.RejectionReason)
	assert.Equal(t, account.StatusPending, f.accounts.statuses["user-1"])

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, audit.ActionProfileResubmitted, f.auditor.entries[0].Action)
}

func TestApprovalService_SubmitProfile_AlreadyApproved(t *testing.T) {
	f := newApprovalFixture()
	f.profiles.put(employee.Profile{
		ID:          "profile-1",
		UserID:      "user-1",
		FullName:    "Jane Doe",
		Status:      employee.StatusApprouve,
		SubmittedAt: time.Now().UTC(),
	})
	ctx := authedContext(t, "user-1", "USER")

	_, err := f.service.SubmitProfile(ctx, employee.SubmitProfileRequest{FullName: "Jane Doe"})
	assert.ErrorIs(t, err, employee.ErrProfileAlreadyApproved)
}

func TestApprovalService_Approve(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")
	ctx := authedContext(t, "rh-1", "RH")

	resp, err := f.service.Approve(ctx, employee.ApproveRequest{ProfileID: "profile-1"})
	require.NoError(t, err)

	assert.Equal(t, string(employee.StatusApprouve), resp.Status)
	require.NotNil(t, resp.DecidedBy)
	assert.Equal(t, "rh-1", *resp.DecidedBy)
	assert.Equal(t, account.StatusActive, f.accounts.statuses["user-1"])

	require.Len(t, f.decisions.decisions, 1)
	assert.Equal(t, employee.DecisionApproved, f.decisions.decisions[0].Decision)
	assert.Equal(t, "rh-1", f.decisions.decisions[0].DeciderID)

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, audit.ActionProfileApproved, f.auditor.entries[0].Action)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "user-1", f.dispatcher.dispatched[0].RecipientID)
	assert.Equal(t, notification.TypeProfileApproved, f.dispatcher.dispatched[0].Type)
}

func TestApprovalService_Reject(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")
	ctx := authedContext(t, "rh-1", "RH")

	resp, err := f.service.Reject(ctx, employee.RejectRequest{ProfileID: "profile-1", Reason: "missing documents"})
	require.NoError(t, err)

	assert.Equal(t, string(employee.StatusRejete), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "missing documents", *resp.RejectionReason)
	assert.Equal(t, account.StatusRejected, f.accounts.statuses["user-1"])

	require.Len(t, f.decisions.decisions, 1)
	assert.Equal(t, employee.DecisionRejected, f.decisions.decisions[0].Decision)
	require.NotNil(t, f.decisions.decisions[0].Reason)
	assert.Equal(t, "missing documents", *f.decisions.decisions[0].Reason)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, notification.TypeProfileRejected, f.dispatcher.dispatched[0].Type)
}

func TestApprovalService_Reject_RequiresReason(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")
	ctx := authedContext(t, "rh-1", "RH")

	_, err := f.service.Reject(ctx, employee.RejectRequest{ProfileID: "profile-1"})
	require.Error(t, err)
	assert.Empty(t, f.decisions.decisions)
}

func TestApprovalService_Approve_RequiresApproverRole(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")
	ctx := authedContext(t, "user-2", "USER")

	_, err := f.service.Approve(ctx, employee.ApproveRequest{ProfileID: "profile-1"})
	assert.ErrorIs(t, err, employee.ErrApproverRoleRequired)
}

func TestApprovalService_Approve_SelfApproval(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "rh-1")
	ctx := authedContext(t, "rh-1", "RH")

	_, err := f.service.Approve(ctx, employee.ApproveRequest{ProfileID: "profile-1"})
	assert.ErrorIs(t, err, employee.ErrSelfApproval)
	assert.Empty(t, f.decisions.decisions)
}

func TestApprovalService_Approve_AlreadyDecided(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")

	_, err := f.service.Approve(authedContext(t, "rh-1", "RH"), employee.ApproveRequest{ProfileID: "profile-1"})
	require.NoError(t, err)

	_, err = f.service.Approve(authedContext(t, "rh-2", "RH"), employee.ApproveRequest{ProfileID: "profile-1"})

	var decidedErr *employee.AlreadyDecidedError
	require.ErrorAs(t, err, &decidedErr)
	assert.Equal(t, "profile-1", decidedErr.ProfileID)
	assert.Equal(t, "rh-1", decidedErr.DeciderID)
	assert.Equal(t, employee.DecisionApproved, decidedErr.Decision)

	// The first decision is the only one recorded.
	require.Len(t, f.decisions.decisions, 1)
}

func TestApprovalService_Reject_RevokesApproval(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")

	_, err := f.service.Approve(authedContext(t, "rh-1", "RH"), employee.ApproveRequest{ProfileID: "profile-1"})
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, f.accounts.statuses["user-1"])

	// A rejection may revoke a prior approval; the decision history keeps both.
	resp, err := f.service.Reject(authedContext(t, "rh-2", "RH"), employee.RejectRequest{ProfileID: "profile-1", Reason: "credentials revoked"})
	require.NoError(t, err)

	assert.Equal(t, string(employee.StatusRejete), resp.Status)
	assert.Equal(t, account.StatusRejected, f.accounts.statuses["user-1"])
	require.Len(t, f.decisions.decisions, 2)
	assert.Equal(t, employee.DecisionRejected, f.decisions.decisions[1].Decision)
}

func TestApprovalService_Reject_AlreadyRejected(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")

	_, err := f.service.Reject(authedContext(t, "rh-1", "RH"), employee.RejectRequest{ProfileID: "profile-1", Reason: "incomplete"})
	require.NoError(t, err)

	_, err = f.service.Reject(authedContext(t, "rh-2", "RH"), employee.RejectRequest{ProfileID: "profile-1", Reason: "incomplete"})

	var decidedErr *employee.AlreadyDecidedError
	require.ErrorAs(t, err, &decidedErr)
	assert.Equal(t, "rh-1", decidedErr.DeciderID)
	assert.Equal(t, employee.DecisionRejected, decidedErr.Decision)
}

func TestApprovalService_Approve_ProfileNotFound(t *testing.T) {
	f := newApprovalFixture()
	ctx := authedContext(t, "rh-1", "RH")

	_, err := f.service.Approve(ctx, employee.ApproveRequest{ProfileID: "missing"})
	assert.ErrorIs(t, err, employee.ErrProfileNotFound)
}

func TestApprovalService_ListProfiles_FilterByStatus(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")
	f.profiles.put(employee.Profile{
		ID:          "profile-2",
		UserID:      "user-2",
		FullName:    "John Roe",
		Status:      employee.StatusApprouve,
		SubmittedAt: time.Now().UTC(),
	})
	ctx := authedContext(t, "rh-1", "RH")

	pending := string(employee.StatusEnAttente)
	resp, err := f.service.ListProfiles(ctx, employee.ProfileFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, resp.Profiles, 1)
	assert.Equal(t, "profile-1", resp.Profiles[0].ID)
}

func TestApprovalService_ListDecisions(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")

	_, err := f.service.Reject(authedContext(t, "rh-1", "RH"), employee.RejectRequest{ProfileID: "profile-1", Reason: "incomplete"})
	require.NoError(t, err)

	decisions, err := f.service.ListDecisions(authedContext(t, "rh-2", "RH"), "profile-1")
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, string(employee.DecisionRejected), decisions[0].Decision)

	_, err = f.service.ListDecisions(authedContext(t, "user-1", "USER"), "profile-1")
	assert.ErrorIs(t, err, employee.ErrApproverRoleRequired)
}

func TestApprovalService_GetMyProfile(t *testing.T) {
	f := newApprovalFixture()
	seedPendingProfile(f, "profile-1", "user-1")

	resp, err := f.service.GetMyProfile(authedContext(t, "user-1", "USER"))
	require.NoError(t, err)
	assert.Equal(t, "profile-1", resp.ID)

	_, err = f.service.GetMyProfile(authedContext(t, "user-2", "USER"))
	assert.ErrorIs(t, err, employee.ErrProfileNotFound)
}
