package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/notification/mocks"
	"governance/internal/repository/memory"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type sentNotification struct {
	event       notification.Event
	recipientID uuid.UUID
	payload     map[string]any
}

type recordingGateway struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (g *recordingGateway) Send(_ context.Context, event notification.Event, recipientID uuid.UUID, payload map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentNotification{event: event, recipientID: recipientID, payload: payload})
	return nil
}

func (g *recordingGateway) events() []notification.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notification.Event, 0, len(g.sent))
	for _, n := range g.sent {
		out = append(out, n.event)
	}
	return out
}

type WorkflowSuite struct {
	suite.Suite
	store    *memory.Store
	deps     WorkflowDeps
	gateway  *recordingGateway
	reviewer uuid.UUID
	author   uuid.UUID
	policy   *model.Policy

	compliances ComplianceService
	approvals   ApprovalWorkflow
	active      ActiveVersionController
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.store = memory.NewStore()
	s.gateway = &recordingGateway{}
	s.deps = WorkflowDeps{
		Tx:          memory.NewTxManager(s.store),
		Compliances: memory.NewComplianceRepository(s.store),
		Approvals:   memory.NewApprovalRepository(s.store),
		Policies:    memory.NewPolicyRepository(s.store),
		Audit:       memory.NewAuditRepository(s.store),
		Notifier:    s.gateway,
	}
	s.wire()

	ctx := context.Background()
	users := memory.NewUserRepository(s.store)
	reviewer := &model.User{Username: "rita", Email: "rita@example.com", Role: model.RoleReviewer}
	author := &model.User{Username: "sam", Email: "sam@example.com", Role: model.RoleStaff}
	s.Require().NoError(users.Create(ctx, reviewer))
	s.Require().NoError(users.Create(ctx, author))
	s.reviewer, s.author = reviewer.ID, author.ID

	s.policy = s.newPolicy("Access Control")
}

func (s *WorkflowSuite) wire() {
	s.approvals = NewApprovalWorkflow(s.deps)
	s.compliances = NewComplianceService(s.deps, s.approvals)
	s.active = NewActiveVersionController(s.deps)
}

func (s *WorkflowSuite) newPolicy(name string) *model.Policy {
	p := &model.Policy{Name: name, FrameworkName: "ISO 27001", ReviewerID: s.reviewer}
	s.Require().NoError(s.deps.Policies.Create(context.Background(), p))
	return p
}

func input(title string) ComplianceInput {
	return ComplianceInput{
		Title:       title,
		Description: "Access reviews are performed quarterly",
		Mitigation:  json.RawMessage(`"1. Enable MFA 2. Review grants"`),
		Criticality: "High",
	}
}

func (s *WorkflowSuite) create(title string) *CreateComplianceResult {
	res, err := s.compliances.CreateCompliance(context.Background(), CreateComplianceRequest{
		PolicyID:        s.policy.ID,
		ComplianceInput: input(title),
	}, &s.author)
	s.Require().NoError(err)
	return res
}

func (s *WorkflowSuite) decide(approvalID uuid.UUID, approved bool) *DecisionResult {
	res, err := s.approvals.SubmitDecision(context.Background(), approvalID, DecisionRequest{
		Approved: model.BoolPtr(approved),
		Remarks:  "looks fine",
	}, &s.reviewer)
	s.Require().NoError(err)
	return res
}

func (s *WorkflowSuite) edit(id uuid.UUID, kind model.VersionKind) *EditComplianceResult {
	res, err := s.compliances.EditCompliance(context.Background(), id, EditComplianceRequest{
		VersionKind:     kind,
		ComplianceInput: input("Quarterly access review"),
	}, &s.author)
	s.Require().NoError(err)
	return res
}

func (s *WorkflowSuite) record(id uuid.UUID) *model.Compliance {
	c, err := s.compliances.GetCompliance(context.Background(), id)
	s.Require().NoError(err)
	return c
}

func (s *WorkflowSuite) approval(id uuid.UUID) *model.ApprovalRequest {
	a, err := s.approvals.GetApproval(context.Background(), id)
	s.Require().NoError(err)
	return a
}

// inForce returns every approved, active version of identifier.
func (s *WorkflowSuite) inForce(identifier string) []model.Compliance {
	versions, err := s.deps.Compliances.ListByIdentifier(context.Background(), identifier)
	s.Require().NoError(err)
	var out []model.Compliance
	for _, v := range versions {
		if v.IsInForce() {
			out = append(out, v)
		}
	}
	return out
}

func (s *WorkflowSuite) auditActions() []string {
	logs, _, err := s.deps.Audit.List(context.Background(), "", 1, 1000)
	s.Require().NoError(err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

// approvedPair creates an item, approves 1.0, edits to 1.1 and approves it.
func (s *WorkflowSuite) approvedPair() (first, second uuid.UUID) {
	created := s.create("Access review")
	s.decide(created.ApprovalID, true)
	edited := s.edit(created.ComplianceID, model.VersionMinor)
	s.decide(edited.ApprovalID, true)
	return created.ComplianceID, edited.ComplianceID
}

func (s *WorkflowSuite) TestCreateEditApproveLifecycle() {
	ctx := context.Background()

	created := s.create("Access review")
	s.Equal("1.0", created.Version)
	s.Equal("u1", created.ApprovalVersion)
	s.Contains(created.Identifier, "COMP-"+s.policy.ID.String()+"-")

	rec := s.record(created.ComplianceID)
	s.Equal(model.StatusUnderReview, rec.Status)
	s.Equal(model.StateInactive, rec.ActiveInactive)
	s.Equal(2, rec.Mitigation.Data().TotalSteps)

	first := s.approval(created.ApprovalID)
	s.True(first.IsPending())
	s.Equal(s.reviewer, first.ReviewerID, "reviewer defaults to the policy reviewer")

	decision := s.decide(created.ApprovalID, true)
	s.Equal("u2", decision.Version)
	s.Equal(model.StatusApproved, decision.Status)
	s.NotEqual(created.ApprovalID, decision.ApprovalID, "a decision appends a new approval row")
	s.False(s.approval(created.ApprovalID).IsPending())

	rec = s.record(created.ComplianceID)
	s.True(rec.IsInForce())

	edited := s.edit(created.ComplianceID, model.VersionMinor)
	s.Equal("1.1", edited.Version)
	s.Equal("u1.1", edited.ApprovalVersion)
	draft := s.record(edited.ComplianceID)
	s.Equal(model.StatusUnderReview, draft.Status)
	s.Equal(model.StateActive, draft.ActiveInactive)
	s.Require().NotNil(draft.PreviousVersionID)
	s.Equal(created.ComplianceID, *draft.PreviousVersionID)

	second := s.decide(edited.ApprovalID, true)
	s.Equal("u3", second.Version)
	s.Equal(edited.ComplianceID, second.ComplianceID)

	s.True(s.record(edited.ComplianceID).IsInForce())
	s.Equal(model.StateInactive, s.record(created.ComplianceID).ActiveInactive)
	s.Len(s.inForce(created.Identifier), 1)

	chain, err := s.compliances.ListVersions(ctx, created.ComplianceID)
	s.Require().NoError(err)
	s.Equal([]string{"1.1", "1.0"}, versionsOf(chain))

	major := s.edit(edited.ComplianceID, model.VersionMajor)
	s.Equal("2.0", major.Version)

	s.Contains(s.auditActions(), model.ActionSupersedeVersion)
	s.Equal([]notification.Event{
		notification.EventReviewRequested,
		notification.EventDecisionRecorded,
		notification.EventReviewRequested,
		notification.EventDecisionRecorded,
		notification.EventReviewRequested,
	}, s.gateway.events())

	history, err := s.approvals.History(ctx, created.Identifier)
	s.Require().NoError(err)
	s.Len(history, 5)
}

func (s *WorkflowSuite) TestEditRefusedWhileUnderReview() {
	created := s.create("Access review")

	_, err := s.compliances.EditCompliance(context.Background(), created.ComplianceID, EditComplianceRequest{
		VersionKind:     model.VersionMinor,
		ComplianceInput: input("Too early"),
	}, &s.author)
	s.True(apperror.Is(err, apperror.CodeConflict))
}

func (s *WorkflowSuite) TestRejectAndResubmit() {
	ctx := context.Background()
	created := s.create("Access review")

	rejected := s.decide(created.ApprovalID, false)
	s.Equal(model.StatusRejected, rejected.Status)
	s.Equal(model.StatusRejected, s.record(created.ComplianceID).Status)

	s.Run("unknown approval is not found", func() {
		_, err := s.approvals.Resubmit(ctx, uuid.New(), ResubmitRequest{ComplianceInput: input("x")}, &s.author)
		s.True(apperror.Is(err, apperror.CodeNotFound))
	})

	res, err := s.approvals.Resubmit(ctx, rejected.ApprovalID, ResubmitRequest{ComplianceInput: input("Access review, fixed")}, &s.author)
	s.Require().NoError(err)
	s.Equal("u3", res.Version)
	s.Equal(created.ComplianceID, res.ComplianceID, "resubmission updates the rejected record in place")

	rec := s.record(created.ComplianceID)
	s.Equal(model.StatusUnderReview, rec.Status)
	s.Equal("Access review, fixed", rec.Title)

	versions, err := s.deps.Compliances.ListByIdentifier(ctx, created.Identifier)
	s.Require().NoError(err)
	s.Len(versions, 1)

	next := s.approval(res.ApprovalID)
	s.True(next.IsPending())
	data, err := next.Extracted()
	s.Require().NoError(err)
	s.True(data.Decision.InResubmission)

	s.Run("resubmitting a pending request conflicts", func() {
		_, err := s.approvals.Resubmit(ctx, res.ApprovalID, ResubmitRequest{ComplianceInput: input("again")}, &s.author)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("a rejection is resubmitted only once", func() {
		_, err := s.approvals.Resubmit(ctx, rejected.ApprovalID, ResubmitRequest{ComplianceInput: input("again")}, &s.author)
		s.Error(err)
	})

	approved := s.decide(res.ApprovalID, true)
	s.Equal(model.StatusApproved, approved.Status)
	s.Len(s.inForce(created.Identifier), 1)
}

func (s *WorkflowSuite) TestDecisionRules() {
	ctx := context.Background()
	created := s.create("Access review")
	s.decide(created.ApprovalID, true)

	s.Run("deciding twice conflicts", func() {
		_, err := s.approvals.SubmitDecision(ctx, created.ApprovalID, DecisionRequest{Approved: model.BoolPtr(false)}, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("decision is required", func() {
		_, err := s.approvals.SubmitDecision(ctx, created.ApprovalID, DecisionRequest{}, &s.reviewer)
		appErr, ok := apperror.From(err)
		s.Require().True(ok)
		s.Equal(apperror.CodeValidation, appErr.Code)
		s.Contains(appErr.Fields, "approved")
	})

	s.Run("unknown approval is not found", func() {
		_, err := s.approvals.SubmitDecision(ctx, uuid.New(), DecisionRequest{Approved: model.BoolPtr(true)}, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeNotFound))
	})
}

func (s *WorkflowSuite) TestCreateValidation() {
	ctx := context.Background()

	s.Run("missing fields are reported by json name", func() {
		_, err := s.compliances.CreateCompliance(ctx, CreateComplianceRequest{
			PolicyID:        s.policy.ID,
			ComplianceInput: ComplianceInput{IsRisk: true, Criticality: "Extreme"},
		}, &s.author)
		appErr, ok := apperror.From(err)
		s.Require().True(ok)
		s.Equal(apperror.CodeValidation, appErr.Code)
		s.Contains(appErr.Fields, "compliance_title")
		s.Contains(appErr.Fields, "compliance_item_description")
		s.Contains(appErr.Fields, "possible_damage")
		s.Contains(appErr.Fields, "criticality")
	})

	s.Run("unknown policy is not found", func() {
		_, err := s.compliances.CreateCompliance(ctx, CreateComplianceRequest{
			PolicyID:        uuid.New(),
			ComplianceInput: input("Orphan"),
		}, &s.author)
		s.True(apperror.Is(err, apperror.CodeNotFound))
	})

	s.Run("explicit identifiers must be unique", func() {
		req := CreateComplianceRequest{PolicyID: s.policy.ID, Identifier: "COMP-CUSTOM-1", ComplianceInput: input("Custom")}
		_, err := s.compliances.CreateCompliance(ctx, req, &s.author)
		s.Require().NoError(err)
		_, err = s.compliances.CreateCompliance(ctx, req, &s.author)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("bad mitigation is a validation error", func() {
		in := input("Bad mitigation")
		in.Mitigation = json.RawMessage(`42`)
		_, err := s.compliances.CreateCompliance(ctx, CreateComplianceRequest{PolicyID: s.policy.ID, ComplianceInput: in}, &s.author)
		s.True(apperror.Is(err, apperror.CodeValidation))
	})
}

func (s *WorkflowSuite) TestCloneIntoAnotherPolicy() {
	ctx := context.Background()
	source := s.create("Access review")
	otherReviewer := &model.User{Username: "olga", Email: "olga@example.com", Role: model.RoleReviewer}
	s.Require().NoError(memory.NewUserRepository(s.store).Create(ctx, otherReviewer))
	target := &model.Policy{Name: "Vendor", ReviewerID: otherReviewer.ID}
	s.Require().NoError(s.deps.Policies.Create(ctx, target))

	title := "Vendor access review"
	res, err := s.compliances.CloneCompliance(ctx, source.ComplianceID, CloneComplianceRequest{
		TargetPolicyID: target.ID,
		Overrides: ComplianceOverrides{
			Title:      &title,
			Mitigation: json.RawMessage(`["Collect SOC2 report", "", "Sign DPA"]`),
		},
	}, &s.author)
	s.Require().NoError(err)
	s.NotEqual(source.Identifier, res.Identifier)

	clone := s.record(res.ComplianceID)
	s.Equal(target.ID, clone.PolicyID)
	s.Equal("1.0", clone.Version)
	s.Equal(model.StatusUnderReview, clone.Status)
	s.Equal(model.StateActive, clone.ActiveInactive)
	s.Equal(title, clone.Title)
	s.Equal("Access reviews are performed quarterly", clone.Description)
	s.Equal(2, clone.Mitigation.Data().TotalSteps)

	a := s.approval(res.ApprovalID)
	s.Equal("u1", a.Version)
	s.Equal(otherReviewer.ID, a.ReviewerID)
}

func (s *WorkflowSuite) TestToggleActiveVersion() {
	ctx := context.Background()
	first, second := s.approvedPair()
	identifier := s.record(first).Identifier

	s.Run("activating an older version retires the current one", func() {
		res, err := s.active.ToggleActiveVersion(ctx, first, &s.reviewer)
		s.Require().NoError(err)
		s.Equal(model.StateActive, res.ActiveInactive)
		s.Equal([]uuid.UUID{second}, res.DeactivatedIDs)
		s.Equal(model.StateInactive, s.record(second).ActiveInactive)
		s.Len(s.inForce(identifier), 1)

		toggle := s.approval(res.ApprovalID)
		s.False(toggle.IsPending())
		data, err := toggle.Extracted()
		s.Require().NoError(err)
		s.Equal(model.ApprovalKindToggle, data.Type)
	})

	s.Run("deactivating hands over to the highest other approved version", func() {
		res, err := s.active.ToggleActiveVersion(ctx, first, &s.reviewer)
		s.Require().NoError(err)
		s.Equal(model.StateInactive, res.ActiveInactive)
		s.Require().NotNil(res.ActivatedID)
		s.Equal(second, *res.ActivatedID)
		inForce := s.inForce(identifier)
		s.Require().Len(inForce, 1)
		s.Equal(second, inForce[0].ID)
	})

	s.Run("versions under review cannot be toggled", func() {
		edited := s.edit(second, model.VersionMinor)
		_, err := s.active.ToggleActiveVersion(ctx, edited.ComplianceID, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})
}

func (s *WorkflowSuite) TestToggleWithoutFallbackConflicts() {
	created := s.create("Access review")
	s.decide(created.ApprovalID, true)

	_, err := s.active.ToggleActiveVersion(context.Background(), created.ComplianceID, &s.reviewer)
	s.True(apperror.Is(err, apperror.CodeConflict))
	s.True(s.record(created.ComplianceID).IsInForce(), "a refused toggle leaves state untouched")
}

func (s *WorkflowSuite) TestDeactivationRequests() {
	ctx := context.Background()
	created := s.create("Access review")
	s.decide(created.ApprovalID, true)
	req := DeactivationRequest{Reason: "control retired"}

	first, err := s.active.RequestDeactivation(ctx, created.ComplianceID, req, &s.author)
	s.Require().NoError(err)
	s.Equal(model.DeactivationIdentifierPrefix+created.Identifier, first.Identifier)
	s.Equal("u1", first.Version)
	s.Equal(s.reviewer, first.ReviewerID)

	s.Run("only one pending request per version", func() {
		_, err := s.active.RequestDeactivation(ctx, created.ComplianceID, req, &s.author)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("review decisions do not apply", func() {
		_, err := s.approvals.SubmitDecision(ctx, first.ID, DecisionRequest{Approved: model.BoolPtr(true)}, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	rejected, err := s.active.RejectDeactivation(ctx, first.ID, DeactivationDecisionRequest{Remarks: "still needed"}, &s.reviewer)
	s.Require().NoError(err)
	s.Equal(model.StateActive, rejected.ActiveInactive)
	s.True(s.record(created.ComplianceID).IsInForce())

	second, err := s.active.RequestDeactivation(ctx, created.ComplianceID, req, &s.author)
	s.Require().NoError(err)
	s.Equal("u2", second.Version)

	approved, err := s.active.ApproveDeactivation(ctx, second.ID, DeactivationDecisionRequest{}, &s.reviewer)
	s.Require().NoError(err)
	s.Equal(model.StateInactive, approved.ActiveInactive)
	s.Empty(s.inForce(created.Identifier))

	s.Run("decided requests stay decided", func() {
		_, err := s.active.ApproveDeactivation(ctx, second.ID, DeactivationDecisionRequest{}, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("inactive versions cannot be deactivated", func() {
		_, err := s.active.RequestDeactivation(ctx, created.ComplianceID, req, &s.author)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("review approvals are not deactivation requests", func() {
		_, err := s.active.ApproveDeactivation(ctx, created.ApprovalID, DeactivationDecisionRequest{}, &s.reviewer)
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	history, err := s.approvals.History(ctx, created.Identifier)
	s.Require().NoError(err)
	s.Len(history, 4)

	s.Contains(s.gateway.events(), notification.EventDeactivationRequested)
	s.Contains(s.gateway.events(), notification.EventDeactivationDecided)
}

func (s *WorkflowSuite) TestReviewerInbox() {
	ctx := context.Background()
	a := s.create("First")
	s.create("Second")
	s.decide(a.ApprovalID, true)

	pending, total, err := s.approvals.ListForReviewer(ctx, s.reviewer, true, 0, 0)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Len(pending, 1)

	_, total, err = s.approvals.ListForReviewer(ctx, s.reviewer, false, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(3, total)
}

func (s *WorkflowSuite) TestListCompliancesFilter() {
	ctx := context.Background()
	a := s.create("First")
	s.create("Second")
	s.decide(a.ApprovalID, true)

	items, total, err := s.compliances.ListCompliances(ctx, ComplianceFilter{Status: model.StatusApproved})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal(a.ComplianceID, items[0].ID)

	_, _, err = s.compliances.ListCompliances(ctx, ComplianceFilter{Status: "Pending"})
	s.True(apperror.Is(err, apperror.CodeValidation))
}

func (s *WorkflowSuite) TestNotifierFailureDoesNotFailWorkflow() {
	ctrl := gomock.NewController(s.T())
	gateway := mocks.NewMockGateway(ctrl)
	s.deps.Notifier = gateway
	s.wire()

	gateway.EXPECT().
		Send(gomock.Any(), notification.EventReviewRequested, s.reviewer, gomock.Any()).
		Return(errors.New("smtp unavailable"))

	created := s.create("Access review")
	s.Equal(model.StatusUnderReview, s.record(created.ComplianceID).Status)
}

func (s *WorkflowSuite) TestFailedOperationSendsNothing() {
	ctrl := gomock.NewController(s.T())
	gateway := mocks.NewMockGateway(ctrl)
	s.deps.Notifier = gateway
	s.wire()

	gateway.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.compliances.CreateCompliance(context.Background(), CreateComplianceRequest{
		PolicyID:        uuid.New(),
		ComplianceInput: input("Orphan"),
	}, &s.author)
	s.Error(err)
}

// retryOnceTx runs every transaction twice, failing the first attempt after
// fn succeeds, the way the postgres manager retries a serialization failure.
type retryOnceTx struct {
	*memory.TxManager
	attempts int
}

var errSerialization = errors.New("could not serialize access due to concurrent update")

func (t *retryOnceTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.attempts++
	_ = t.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := fn(txCtx); err != nil {
			return err
		}
		return errSerialization
	})
	t.attempts++
	return t.TxManager.RunInTx(ctx, fn)
}

func (s *WorkflowSuite) TestRetriedTransactionNotifiesOnce() {
	tx := &retryOnceTx{TxManager: memory.NewTxManager(s.store)}
	s.deps.Tx = tx
	s.wire()

	created := s.create("Access review")

	s.Equal(2, tx.attempts)
	s.Equal([]notification.Event{notification.EventReviewRequested}, s.gateway.events())

	versions, err := s.deps.Compliances.ListByIdentifier(context.Background(), created.Identifier)
	s.Require().NoError(err)
	s.Len(versions, 1, "the rolled back attempt leaves no row behind")
}

func (s *WorkflowSuite) TestConcurrentDecisionsOnOneApproval() {
	created := s.create("Access review")

	const racers = 2
	errs := make([]error, racers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = s.approvals.SubmitDecision(context.Background(), created.ApprovalID, DecisionRequest{
				Approved: model.BoolPtr(i == 0),
				Remarks:  "racing",
			}, &s.reviewer)
		}()
	}
	close(start)
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case apperror.Is(err, apperror.CodeConflict):
			conflicted++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, won)
	s.Equal(1, conflicted)

	history, err := s.approvals.History(context.Background(), created.Identifier)
	s.Require().NoError(err)
	s.Len(history, 2, "the review request plus exactly one decision row")
	s.NotEqual(model.StatusUnderReview, s.record(created.ComplianceID).Status)
}

func (s *WorkflowSuite) TestEditOfOlderVersionBumpsFromHighest() {
	first, second := s.approvedPair()

	edited := s.edit(first, model.VersionMinor)
	s.Equal("1.2", edited.Version, "1.0 is edited but 1.1 already exists")
	draft := s.record(edited.ComplianceID)
	s.Require().NotNil(draft.PreviousVersionID)
	s.Equal(first, *draft.PreviousVersionID, "the chain still points at the edited source")
	s.NotEqual(second, *draft.PreviousVersionID)
}
