package service

import (
	"context"
	"fmt"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ActiveVersionController decides which version of an identifier is in force.
type ActiveVersionController interface {
	ToggleActiveVersion(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*ToggleResult, error)
	RequestDeactivation(ctx context.Context, id uuid.UUID, req DeactivationRequest, userID *uuid.UUID) (*model.ApprovalRequest, error)
	ApproveDeactivation(ctx context.Context, approvalID uuid.UUID, req DeactivationDecisionRequest, userID *uuid.UUID) (*DeactivationResult, error)
	RejectDeactivation(ctx context.Context, approvalID uuid.UUID, req DeactivationDecisionRequest, userID *uuid.UUID) (*DeactivationResult, error)
}

type activeVersionController struct {
	*workflowCore
}

func NewActiveVersionController(deps WorkflowDeps) ActiveVersionController {
	return &activeVersionController{workflowCore: newWorkflowCore(deps)}
}

// ToggleActiveVersion flips an approved version. Deactivating hands the
// active role to the highest other approved version; with none available
// the caller must file a deactivation request. Activating retires every
// other version. Each toggle is recorded as a pre-approved request.
func (c *activeVersionController) ToggleActiveVersion(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*ToggleResult, error) {
	var result *ToggleResult
	err := c.run(ctx, "toggle_active_version", func(txCtx context.Context) error {
		target, err := c.loadCompliance(txCtx, id)
		if err != nil {
			return err
		}
		if err := c.lock(txCtx, target.Identifier); err != nil {
			return err
		}
		if target, err = c.loadCompliance(txCtx, id); err != nil {
			return err
		}
		if target.Status != model.StatusApproved {
			return apperror.Conflict("only approved versions can be toggled; %s is %s", target.Version, target.Status)
		}

		chain, err := c.loadChain(txCtx, target)
		if err != nil {
			return err
		}

		details := model.ToggleDetails{ComplianceID: target.ID, DeactivatedIDs: []uuid.UUID{}}
		var changed []*model.Compliance

		switch target.ActiveInactive {
		case model.StateActive:
			var fallback *model.Compliance
			for i := range chain {
				if chain[i].ID != target.ID && chain[i].Status == model.StatusApproved {
					fallback = &chain[i]
					break
				}
			}
			if fallback == nil {
				return apperror.Conflict("%s has no other approved version to fall back to; request deactivation instead", target.Identifier)
			}
			fallback.ActiveInactive = model.StateActive
			target.ActiveInactive = model.StateInactive
			details.ActivatedID = &fallback.ID
			details.DeactivatedIDs = append(details.DeactivatedIDs, target.ID)
			changed = append(changed, fallback, target)

		case model.StateInactive:
			target.ActiveInactive = model.StateActive
			details.ActivatedID = &target.ID
			changed = append(changed, target)
			for i := range chain {
				sibling := &chain[i]
				if sibling.ID == target.ID || sibling.ActiveInactive != model.StateActive {
					continue
				}
				sibling.ActiveInactive = model.StateInactive
				details.DeactivatedIDs = append(details.DeactivatedIDs, sibling.ID)
				changed = append(changed, sibling)
			}

		default:
			return apperror.Conflict("compliance %s has unknown active state %q", target.ID, target.ActiveInactive)
		}

		for _, rec := range changed {
			if err := c.saveCompliance(txCtx, rec); err != nil {
				return err
			}
		}

		approval, err := c.recordToggle(txCtx, target, details, userID)
		if err != nil {
			return err
		}

		if err := c.audit(txCtx, userID, model.ActionToggleActive, target.ID.String(), target.Identifier, map[string]any{
			"version":         target.Version,
			"active_inactive": target.ActiveInactive,
			"activated_id":    details.ActivatedID,
			"deactivated_ids": details.DeactivatedIDs,
		}); err != nil {
			return err
		}
		c.notify(txCtx, notification.EventActiveVersionChanged, target.CreatedBy, map[string]any{
			"identifier":      target.Identifier,
			"compliance_id":   target.ID,
			"active_inactive": target.ActiveInactive,
		})

		result = &ToggleResult{
			ComplianceID:   target.ID,
			ActiveInactive: target.ActiveInactive,
			ActivatedID:    details.ActivatedID,
			DeactivatedIDs: details.DeactivatedIDs,
			ApprovalID:     approval.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *activeVersionController) recordToggle(ctx context.Context, target *model.Compliance, details model.ToggleDetails, userID *uuid.UUID) (*model.ApprovalRequest, error) {
	policy, err := c.loadPolicy(ctx, target.PolicyID)
	if err != nil {
		return nil, err
	}
	reviewer := policy.ReviewerID
	if userID != nil {
		reviewer = *userID
	}
	version, err := c.nextApprovalVersion(ctx, target.Identifier)
	if err != nil {
		return nil, err
	}

	now := c.Now()
	approval := &model.ApprovalRequest{
		Identifier: target.Identifier,
		Version:    version,
		ExtractedData: datatypes.NewJSONType(model.ExtractedData{
			SchemaVersion: model.ExtractedDataSchemaVersion,
			Type:          model.ApprovalKindToggle,
			Toggle:        &details,
			Decision:      model.Decision{Approved: model.BoolPtr(true), Remarks: "active version toggled"},
		}),
		UserID:       userID,
		ReviewerID:   reviewer,
		ApprovedNot:  model.BoolPtr(true),
		ApprovedDate: &now,
	}
	if err := c.Approvals.Create(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to record toggle: %w", err)
	}
	return approval, nil
}

func (c *activeVersionController) RequestDeactivation(ctx context.Context, id uuid.UUID, req DeactivationRequest, userID *uuid.UUID) (*model.ApprovalRequest, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var approval *model.ApprovalRequest
	err := c.run(ctx, "request_deactivation", func(txCtx context.Context) error {
		target, err := c.loadCompliance(txCtx, id)
		if err != nil {
			return err
		}
		if err := c.lock(txCtx, target.Identifier); err != nil {
			return err
		}
		if target, err = c.loadCompliance(txCtx, id); err != nil {
			return err
		}
		if target.ActiveInactive != model.StateActive {
			return apperror.Conflict("version %s of %s is not active", target.Version, target.Identifier)
		}

		tagged := model.DeactivationIdentifierPrefix + target.Identifier
		existing, err := c.Approvals.ListByIdentifier(txCtx, tagged)
		if err != nil {
			return fmt.Errorf("failed to load deactivation requests: %w", err)
		}
		for i := range existing {
			if !existing[i].IsPending() {
				continue
			}
			data, err := extracted(&existing[i])
			if err != nil {
				return err
			}
			if data.Deactivation != nil && data.Deactivation.ComplianceID == target.ID {
				return apperror.Conflict("a deactivation request for %s is already pending", target.ID)
			}
		}

		policy, err := c.loadPolicy(txCtx, target.PolicyID)
		if err != nil {
			return err
		}
		reviewer := policy.ReviewerID
		if req.ReviewerID != nil && *req.ReviewerID != uuid.Nil {
			reviewer = *req.ReviewerID
		}
		versions := make([]string, 0, len(existing))
		for _, a := range existing {
			versions = append(versions, a.Version)
		}

		approval = &model.ApprovalRequest{
			Identifier: tagged,
			Version:    NextApprovalVersion(versions),
			ExtractedData: datatypes.NewJSONType(model.ExtractedData{
				SchemaVersion: model.ExtractedDataSchemaVersion,
				Type:          model.ApprovalKindDeactivation,
				Deactivation: &model.DeactivationDetails{
					ComplianceID:       target.ID,
					OriginalIdentifier: target.Identifier,
					Version:            target.Version,
					Reason:             req.Reason,
				},
				Decision: model.Decision{DueDate: req.DueDate},
			}),
			UserID:     userID,
			ReviewerID: reviewer,
			DueDate:    req.DueDate,
		}
		if err := c.Approvals.Create(txCtx, approval); err != nil {
			return fmt.Errorf("failed to create deactivation request: %w", err)
		}

		if err := c.audit(txCtx, userID, model.ActionRequestDeactivation, approval.ID.String(), target.Identifier, map[string]any{
			"compliance_id": target.ID,
			"version":       target.Version,
			"reason":        req.Reason,
		}); err != nil {
			return err
		}
		c.notify(txCtx, notification.EventDeactivationRequested, &approval.ReviewerID, map[string]any{
			"identifier":    target.Identifier,
			"compliance_id": target.ID,
			"approval_id":   approval.ID,
			"reason":        req.Reason,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approval, nil
}

func (c *activeVersionController) ApproveDeactivation(ctx context.Context, approvalID uuid.UUID, req DeactivationDecisionRequest, userID *uuid.UUID) (*DeactivationResult, error) {
	return c.decideDeactivation(ctx, approvalID, true, req, userID)
}

func (c *activeVersionController) RejectDeactivation(ctx context.Context, approvalID uuid.UUID, req DeactivationDecisionRequest, userID *uuid.UUID) (*DeactivationResult, error) {
	return c.decideDeactivation(ctx, approvalID, false, req, userID)
}

func (c *activeVersionController) decideDeactivation(ctx context.Context, approvalID uuid.UUID, approve bool, req DeactivationDecisionRequest, userID *uuid.UUID) (*DeactivationResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	op := "reject_deactivation"
	if approve {
		op = "approve_deactivation"
	}

	var result *DeactivationResult
	err := c.run(ctx, op, func(txCtx context.Context) error {
		approval, err := c.loadApproval(txCtx, approvalID)
		if err != nil {
			return err
		}
		identifier, tagged := originalIdentifier(approval.Identifier)
		if !tagged {
			return apperror.Conflict("approval %s is not a deactivation request", approvalID)
		}
		if err := c.lock(txCtx, identifier); err != nil {
			return err
		}
		if approval, err = c.loadApproval(txCtx, approvalID); err != nil {
			return err
		}
		data, err := extracted(approval)
		if err != nil {
			return err
		}
		if data.Type != model.ApprovalKindDeactivation {
			return apperror.Conflict("approval %s is not a deactivation request", approvalID)
		}
		if !approval.IsPending() {
			return apperror.Conflict("deactivation request %s was already decided", approvalID)
		}

		record, err := c.loadCompliance(txCtx, data.Deactivation.ComplianceID)
		if err != nil {
			return err
		}

		action := model.ActionRejectDeactivation
		if approve {
			action = model.ActionApproveDeactivation
			record.ActiveInactive = model.StateInactive
		} else if err := c.reassertActive(txCtx, record); err != nil {
			return err
		}
		if err := c.saveCompliance(txCtx, record); err != nil {
			return err
		}

		now := c.Now()
		data.Decision.Approved = model.BoolPtr(approve)
		data.Decision.Remarks = req.Remarks
		approval.ApprovedNot = model.BoolPtr(approve)
		approval.ApprovedDate = &now
		approval.ExtractedData = datatypes.NewJSONType(data)
		if err := c.saveApproval(txCtx, approval); err != nil {
			return err
		}

		if err := c.audit(txCtx, userID, action, approval.ID.String(), identifier, map[string]any{
			"compliance_id":   record.ID,
			"active_inactive": record.ActiveInactive,
			"remarks":         req.Remarks,
		}); err != nil {
			return err
		}
		c.notify(txCtx, notification.EventDeactivationDecided, approval.UserID, map[string]any{
			"identifier":    identifier,
			"compliance_id": record.ID,
			"approval_id":   approval.ID,
			"approved":      approve,
			"remarks":       req.Remarks,
		})

		result = &DeactivationResult{
			ApprovalID:     approval.ID,
			ComplianceID:   record.ID,
			ActiveInactive: record.ActiveInactive,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reassertActive keeps a record whose deactivation was refused active,
// unless another approved version has taken over in the meantime.
func (c *activeVersionController) reassertActive(ctx context.Context, record *model.Compliance) error {
	if record.ActiveInactive == model.StateActive {
		return nil
	}
	if record.Status == model.StatusApproved {
		chain, err := c.loadChain(ctx, record)
		if err != nil {
			return err
		}
		for i := range chain {
			if chain[i].ID != record.ID && chain[i].IsInForce() {
				c.Log.Warn("not re-activating, another version is in force",
					zap.Stringer("compliance_id", record.ID),
					zap.Stringer("active_id", chain[i].ID))
				return nil
			}
		}
	}
	record.ActiveInactive = model.StateActive
	return nil
}
