package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ApprovalWorkflow reviews compliance versions.
type ApprovalWorkflow interface {
	// CreateForReview opens the first review request for a freshly created record.
	CreateForReview(ctx context.Context, record *model.Compliance, reviewerID *uuid.UUID, dueDate *time.Time, submitter *uuid.UUID) (*model.ApprovalRequest, error)
	SubmitDecision(ctx context.Context, approvalID uuid.UUID, req DecisionRequest, deciderID *uuid.UUID) (*DecisionResult, error)
	Resubmit(ctx context.Context, approvalID uuid.UUID, req ResubmitRequest, userID *uuid.UUID) (*ResubmitResult, error)
	GetApproval(ctx context.Context, approvalID uuid.UUID) (*model.ApprovalRequest, error)
	ListForReviewer(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool, page, limit int) ([]model.ApprovalRequest, int64, error)
	History(ctx context.Context, identifier string) ([]model.ApprovalRequest, error)
}

type approvalWorkflow struct {
	*workflowCore
}

func NewApprovalWorkflow(deps WorkflowDeps) ApprovalWorkflow {
	return &approvalWorkflow{workflowCore: newWorkflowCore(deps)}
}

func (w *approvalWorkflow) CreateForReview(ctx context.Context, record *model.Compliance, reviewerID *uuid.UUID, dueDate *time.Time, submitter *uuid.UUID) (*model.ApprovalRequest, error) {
	var approval *model.ApprovalRequest
	err := w.run(ctx, "create_for_review", func(txCtx context.Context) error {
		if err := w.lock(txCtx, record.Identifier); err != nil {
			return err
		}
		version, err := w.nextApprovalVersion(txCtx, record.Identifier)
		if err != nil {
			return err
		}
		approval, err = w.createReviewApproval(txCtx, reviewDraft{
			record:    record,
			version:   version,
			reviewer:  reviewerID,
			dueDate:   dueDate,
			submitter: submitter,
		})
		if err != nil {
			return err
		}
		w.notify(txCtx, notification.EventReviewRequested, &approval.ReviewerID, map[string]any{
			"identifier":    record.Identifier,
			"compliance_id": record.ID,
			"approval_id":   approval.ID,
			"version":       approval.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approval, nil
}

func (w *approvalWorkflow) SubmitDecision(ctx context.Context, approvalID uuid.UUID, req DecisionRequest, deciderID *uuid.UUID) (*DecisionResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	approved := *req.Approved

	var result *DecisionResult
	err := w.run(ctx, "submit_decision", func(txCtx context.Context) error {
		approval, err := w.loadApproval(txCtx, approvalID)
		if err != nil {
			return err
		}
		if err := w.lock(txCtx, approval.Identifier); err != nil {
			return err
		}
		// Re-read under the lock; a racing decision may have landed meanwhile
		if approval, err = w.loadApproval(txCtx, approvalID); err != nil {
			return err
		}
		if !approval.IsPending() {
			return apperror.Conflict("approval %s was already decided", approvalID)
		}

		data, err := extracted(approval)
		if err != nil {
			return err
		}
		if data.Type != model.ApprovalKindReview {
			return apperror.Conflict("approval %s is a %s request and cannot take a review decision", approvalID, data.Type)
		}

		now := w.Now()
		data.Decision.Approved = model.BoolPtr(approved)
		data.Decision.Remarks = req.Remarks
		data.Decision.InResubmission = false

		approval.ApprovedNot = model.BoolPtr(approved)
		approval.ApprovedDate = &now
		approval.ExtractedData = datatypes.NewJSONType(data)
		if err := w.saveApproval(txCtx, approval); err != nil {
			return err
		}

		nextVersion, err := w.nextApprovalVersion(txCtx, approval.Identifier)
		if err != nil {
			return err
		}
		next := &model.ApprovalRequest{
			Identifier:    approval.Identifier,
			Version:       nextVersion,
			ExtractedData: datatypes.NewJSONType(data),
			UserID:        approval.UserID,
			ReviewerID:    approval.ReviewerID,
			ApprovedNot:   model.BoolPtr(approved),
			ApprovedDate:  &now,
			DueDate:       approval.DueDate,
		}
		if err := w.Approvals.Create(txCtx, next); err != nil {
			return fmt.Errorf("failed to create follow-up approval: %w", err)
		}

		record, err := w.Compliances.FindLatestByStatus(txCtx, approval.Identifier, model.StatusUnderReview)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Conflict("no version of %s is under review", approval.Identifier)
		}
		if err != nil {
			return fmt.Errorf("failed to load record under review: %w", err)
		}

		action := model.ActionRejectRequest
		if approved {
			action = model.ActionApproveRequest
			if err := w.approveRecord(txCtx, record, deciderID); err != nil {
				return err
			}
		} else {
			record.Status = model.StatusRejected
			if err := w.saveCompliance(txCtx, record); err != nil {
				return err
			}
		}

		if err := w.audit(txCtx, deciderID, action, approval.ID.String(), approval.Identifier, map[string]any{
			"compliance_id":    record.ID,
			"approval_version": approval.Version,
			"next_version":     nextVersion,
			"remarks":          req.Remarks,
		}); err != nil {
			return err
		}

		w.notify(txCtx, notification.EventDecisionRecorded, approval.UserID, map[string]any{
			"identifier":    approval.Identifier,
			"compliance_id": record.ID,
			"approval_id":   next.ID,
			"approved":      approved,
			"remarks":       req.Remarks,
		})

		result = &DecisionResult{
			ApprovalID:   next.ID,
			Version:      nextVersion,
			Approved:     approved,
			ComplianceID: record.ID,
			Status:       record.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// approveRecord puts record in force and retires its direct predecessor.
// Any other approved version still marked active is retired as well so at
// most one approved version of an identifier is ever active.
func (w *approvalWorkflow) approveRecord(ctx context.Context, record *model.Compliance, deciderID *uuid.UUID) error {
	record.Status = model.StatusApproved
	record.ActiveInactive = model.StateActive
	if err := w.saveCompliance(ctx, record); err != nil {
		return err
	}

	if record.PreviousVersionID != nil {
		prev, err := w.Compliances.FindByID(ctx, *record.PreviousVersionID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.Log.Warn("predecessor missing, nothing to supersede",
				zap.Stringer("compliance_id", record.ID),
				zap.Stringer("previous_version_id", *record.PreviousVersionID))
		case err != nil:
			return fmt.Errorf("failed to load predecessor: %w", err)
		case prev.ActiveInactive == model.StateActive:
			prev.ActiveInactive = model.StateInactive
			if err := w.saveCompliance(ctx, prev); err != nil {
				return err
			}
			if err := w.audit(ctx, deciderID, model.ActionSupersedeVersion, prev.ID.String(), prev.Identifier, map[string]any{
				"superseded_by": record.ID,
				"version":       prev.Version,
			}); err != nil {
				return err
			}
		}
	}

	chain, err := w.loadChain(ctx, record)
	if err != nil {
		return err
	}
	for i := range chain {
		sibling := &chain[i]
		if sibling.ID == record.ID || !sibling.IsInForce() {
			continue
		}
		w.Log.Warn("retiring second active approved version",
			zap.String("identifier", record.Identifier),
			zap.Stringer("compliance_id", sibling.ID),
			zap.String("version", sibling.Version))
		sibling.ActiveInactive = model.StateInactive
		if err := w.saveCompliance(ctx, sibling); err != nil {
			return err
		}
	}
	return nil
}

func (w *approvalWorkflow) Resubmit(ctx context.Context, approvalID uuid.UUID, req ResubmitRequest, userID *uuid.UUID) (*ResubmitResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields, err := req.toFields()
	if err != nil {
		return nil, err
	}

	var result *ResubmitResult
	err = w.run(ctx, "resubmit", func(txCtx context.Context) error {
		approval, err := w.loadApproval(txCtx, approvalID)
		if err != nil {
			return err
		}
		if err := w.lock(txCtx, approval.Identifier); err != nil {
			return err
		}
		if approval, err = w.loadApproval(txCtx, approvalID); err != nil {
			return err
		}
		if !approval.IsRejected() {
			return apperror.Conflict("approval %s is not rejected and cannot be resubmitted", approvalID)
		}
		data, err := extracted(approval)
		if err != nil {
			return err
		}
		if data.Type != model.ApprovalKindReview {
			return apperror.Conflict("approval %s is a %s request and cannot be resubmitted", approvalID, data.Type)
		}

		record, err := w.Compliances.FindLatestByStatus(txCtx, approval.Identifier, model.StatusRejected)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("no rejected version of %s to resubmit", approval.Identifier)
		}
		if err != nil {
			return fmt.Errorf("failed to load rejected record: %w", err)
		}
		if _, err := w.Compliances.FindLatestByStatus(txCtx, approval.Identifier, model.StatusUnderReview); err == nil {
			return apperror.Conflict("another version of %s is already under review", approval.Identifier)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check pending versions: %w", err)
		}

		record.ComplianceFields = fields
		record.Status = model.StatusUnderReview
		if err := w.saveCompliance(txCtx, record); err != nil {
			return err
		}

		version, err := w.nextApprovalVersion(txCtx, approval.Identifier)
		if err != nil {
			return err
		}
		dueDate := req.DueDate
		if dueDate == nil {
			dueDate = approval.DueDate
		}
		submitter := userID
		if submitter == nil {
			submitter = approval.UserID
		}
		reviewer := approval.ReviewerID
		next, err := w.createReviewApproval(txCtx, reviewDraft{
			record:    record,
			version:   version,
			reviewer:  &reviewer,
			dueDate:   dueDate,
			submitter: submitter,
			decision:  model.Decision{InResubmission: true},
		})
		if err != nil {
			return err
		}

		if err := w.audit(txCtx, userID, model.ActionResubmitRequest, next.ID.String(), approval.Identifier, map[string]any{
			"compliance_id":     record.ID,
			"rejected_approval": approval.ID,
			"version":           version,
		}); err != nil {
			return err
		}
		w.notify(txCtx, notification.EventResubmitted, &next.ReviewerID, map[string]any{
			"identifier":    approval.Identifier,
			"compliance_id": record.ID,
			"approval_id":   next.ID,
			"version":       version,
		})

		result = &ResubmitResult{ApprovalID: next.ID, Version: version, ComplianceID: record.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (w *approvalWorkflow) GetApproval(ctx context.Context, approvalID uuid.UUID) (*model.ApprovalRequest, error) {
	approval, err := w.loadApproval(ctx, approvalID)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return approval, nil
}

func (w *approvalWorkflow) ListForReviewer(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool, page, limit int) ([]model.ApprovalRequest, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	approvals, total, err := w.Approvals.ListByReviewer(ctx, reviewerID, pendingOnly, page, limit)
	if err != nil {
		return nil, 0, repository.Classify(fmt.Errorf("failed to list approvals: %w", err))
	}
	return approvals, total, nil
}

// History lists every request filed under identifier, including
// deactivation requests, in submission order.
func (w *approvalWorkflow) History(ctx context.Context, identifier string) ([]model.ApprovalRequest, error) {
	reviews, err := w.Approvals.ListByIdentifier(ctx, identifier)
	if err != nil {
		return nil, repository.Classify(fmt.Errorf("failed to load approval history: %w", err))
	}
	deactivations, err := w.Approvals.ListByIdentifier(ctx, model.DeactivationIdentifierPrefix+identifier)
	if err != nil {
		return nil, repository.Classify(fmt.Errorf("failed to load deactivation history: %w", err))
	}
	all := append(reviews, deactivations...)
	sortByCreatedAt(all)
	return all, nil
}

func sortByCreatedAt(approvals []model.ApprovalRequest) {
	slices.SortStableFunc(approvals, func(a, b model.ApprovalRequest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
