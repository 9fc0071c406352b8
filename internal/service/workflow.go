package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"governance/internal/metrics"
	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// WorkflowDeps are the collaborators shared by the compliance, approval and
// active-version services.
type WorkflowDeps struct {
	Tx          repository.TransactionManager
	Compliances repository.ComplianceRepository
	Approvals   repository.ApprovalRepository
	Policies    repository.PolicyRepository
	Audit       repository.AuditRepository
	Notifier    notification.Gateway
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type workflowCore struct {
	WorkflowDeps
}

func newWorkflowCore(deps WorkflowDeps) *workflowCore {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &workflowCore{WorkflowDeps: deps}
}

type pendingNotification struct {
	event       notification.Event
	recipientID uuid.UUID
	payload     map[string]any
}

type outbox struct {
	items []pendingNotification
}

type outboxKey struct{}

// run executes fn in one transaction and sends the notifications it queued
// once the transaction has committed. Calls made from inside another run
// join the outer transaction and outbox.
func (w *workflowCore) run(ctx context.Context, op string, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(outboxKey{}).(*outbox); ok {
		return fn(ctx)
	}

	start := time.Now()
	box := &outbox{}
	err := w.Tx.RunInTx(context.WithValue(ctx, outboxKey{}, box), func(txCtx context.Context) error {
		// A retried attempt starts over; only the committed attempt's
		// notifications may be sent.
		box.items = box.items[:0]
		return fn(txCtx)
	})

	result := "ok"
	if err != nil {
		result = "error"
		if appErr, ok := apperror.From(err); ok {
			result = string(appErr.Code)
		}
	}
	w.Metrics.ObserveWorkflow(op, result, time.Since(start))
	if err != nil {
		if apperror.Is(err, apperror.CodeStorage) {
			w.Log.Error("workflow operation failed", zap.String("operation", op), zap.Error(err))
		}
		return err
	}

	w.flush(ctx, op, box)
	return nil
}

// flush hands queued notifications to the gateway. Failures are logged only.
func (w *workflowCore) flush(ctx context.Context, op string, box *outbox) {
	if w.Notifier == nil {
		return
	}
	for _, n := range box.items {
		if err := w.Notifier.Send(ctx, n.event, n.recipientID, n.payload); err != nil {
			w.Log.Warn("notification not sent",
				zap.String("operation", op),
				zap.String("event", string(n.event)),
				zap.Stringer("recipient_id", n.recipientID),
				zap.Error(err))
		}
	}
}

// notify queues a notification for after commit.
func (w *workflowCore) notify(ctx context.Context, event notification.Event, recipientID *uuid.UUID, payload map[string]any) {
	if recipientID == nil || *recipientID == uuid.Nil {
		return
	}
	box, ok := ctx.Value(outboxKey{}).(*outbox)
	if !ok {
		w.Log.Warn("notification queued outside a workflow operation", zap.String("event", string(event)))
		return
	}
	box.items = append(box.items, pendingNotification{event: event, recipientID: *recipientID, payload: payload})
}

// audit writes one trail row inside the current transaction.
func (w *workflowCore) audit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details any) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(detailsJSON),
	}
	if err := w.Audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// lock serialises work on one compliance identifier for the rest of the transaction.
func (w *workflowCore) lock(ctx context.Context, identifier string) error {
	if err := w.Tx.LockKey(ctx, identifier); err != nil {
		return fmt.Errorf("lock %s: %w", identifier, err)
	}
	return nil
}

func (w *workflowCore) loadCompliance(ctx context.Context, id uuid.UUID) (*model.Compliance, error) {
	c, err := w.Compliances.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("compliance %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load compliance %s: %w", id, err)
	}
	return c, nil
}

func (w *workflowCore) loadApproval(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	a, err := w.Approvals.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("approval %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load approval %s: %w", id, err)
	}
	return a, nil
}

func (w *workflowCore) loadPolicy(ctx context.Context, id uuid.UUID) (*model.Policy, error) {
	p, err := w.Policies.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("policy %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", id, err)
	}
	return p, nil
}

// loadChain returns every version sharing c's identifier, newest first.
func (w *workflowCore) loadChain(ctx context.Context, c *model.Compliance) ([]model.Compliance, error) {
	versions, err := w.Compliances.ListByIdentifier(ctx, c.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions of %s: %w", c.Identifier, err)
	}
	return ResolveChain(*c, versions), nil
}

func (w *workflowCore) nextApprovalVersion(ctx context.Context, identifier string) (string, error) {
	versions, err := w.Approvals.ListVersions(ctx, identifier)
	if err != nil {
		return "", fmt.Errorf("failed to list approval versions of %s: %w", identifier, err)
	}
	return NextApprovalVersion(versions), nil
}

func (w *workflowCore) saveCompliance(ctx context.Context, c *model.Compliance) error {
	if err := w.Compliances.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update compliance %s: %w", c.ID, err)
	}
	return nil
}

func (w *workflowCore) saveApproval(ctx context.Context, a *model.ApprovalRequest) error {
	if err := w.Approvals.Update(ctx, a); err != nil {
		return fmt.Errorf("failed to update approval %s: %w", a.ID, err)
	}
	return nil
}

// reviewDraft describes a review request about to be written.
type reviewDraft struct {
	record    *model.Compliance
	version   string
	reviewer  *uuid.UUID
	dueDate   *time.Time
	submitter *uuid.UUID
	decision  model.Decision
}

// createReviewApproval persists a review request for draft.record. The
// reviewer defaults to the owning policy's reviewer.
func (w *workflowCore) createReviewApproval(ctx context.Context, d reviewDraft) (*model.ApprovalRequest, error) {
	policy, err := w.loadPolicy(ctx, d.record.PolicyID)
	if err != nil {
		return nil, err
	}
	reviewerID := policy.ReviewerID
	if d.reviewer != nil && *d.reviewer != uuid.Nil {
		reviewerID = *d.reviewer
	}

	decision := d.decision
	decision.DueDate = d.dueDate
	data := model.ExtractedData{
		SchemaVersion: model.ExtractedDataSchemaVersion,
		Type:          model.ApprovalKindReview,
		Compliance:    snapshotOf(d.record),
		Decision:      decision,
	}

	approval := &model.ApprovalRequest{
		Identifier:    d.record.Identifier,
		Version:       d.version,
		ExtractedData: datatypes.NewJSONType(data),
		UserID:        d.submitter,
		ReviewerID:    reviewerID,
		DueDate:       d.dueDate,
	}
	if err := w.Approvals.Create(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}

	if err := w.audit(ctx, d.submitter, model.ActionCreateApprovalRequest, approval.ID.String(), d.record.Identifier, map[string]any{
		"compliance_id": d.record.ID,
		"version":       approval.Version,
		"reviewer_id":   reviewerID,
	}); err != nil {
		return nil, err
	}
	return approval, nil
}

func snapshotOf(c *model.Compliance) *model.ComplianceSnapshot {
	return &model.ComplianceSnapshot{
		ComplianceID:      c.ID,
		Identifier:        c.Identifier,
		Version:           c.Version,
		PreviousVersionID: c.PreviousVersionID,
		PolicyID:          c.PolicyID,
		ComplianceFields:  c.ComplianceFields,
	}
}

// extracted reads a validated payload; a malformed row is a conflict the
// caller cannot fix by retrying.
func extracted(a *model.ApprovalRequest) (model.ExtractedData, error) {
	data, err := a.Extracted()
	if err != nil {
		return model.ExtractedData{}, apperror.Conflict("approval %s has an unreadable payload: %v", a.ID, err)
	}
	return data, nil
}

// originalIdentifier strips the deactivation tag from an approval identifier.
func originalIdentifier(approvalIdentifier string) (string, bool) {
	return strings.CutPrefix(approvalIdentifier, model.DeactivationIdentifierPrefix)
}
