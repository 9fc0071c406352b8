package service

import (
	"context"
	"fmt"
	"strings"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
)

const initialRecordVersion = "1.0"

// ComplianceService creates and re-versions compliance items.
type ComplianceService interface {
	CreateCompliance(ctx context.Context, req CreateComplianceRequest, userID *uuid.UUID) (*CreateComplianceResult, error)
	EditCompliance(ctx context.Context, id uuid.UUID, req EditComplianceRequest, userID *uuid.UUID) (*EditComplianceResult, error)
	CloneCompliance(ctx context.Context, sourceID uuid.UUID, req CloneComplianceRequest, userID *uuid.UUID) (*CloneComplianceResult, error)
	GetCompliance(ctx context.Context, id uuid.UUID) (*model.Compliance, error)
	ListCompliances(ctx context.Context, filter ComplianceFilter) ([]model.Compliance, int64, error)
	// ListVersions resolves the version chain of id, newest first.
	ListVersions(ctx context.Context, id uuid.UUID) ([]model.Compliance, error)
}

type complianceService struct {
	*workflowCore
	approvals ApprovalWorkflow
}

func NewComplianceService(deps WorkflowDeps, approvals ApprovalWorkflow) ComplianceService {
	return &complianceService{workflowCore: newWorkflowCore(deps), approvals: approvals}
}

func (s *complianceService) CreateCompliance(ctx context.Context, req CreateComplianceRequest, userID *uuid.UUID) (*CreateComplianceResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields, err := req.toFields()
	if err != nil {
		return nil, err
	}

	var result *CreateComplianceResult
	err = s.run(ctx, "create_compliance", func(txCtx context.Context) error {
		if _, err := s.loadPolicy(txCtx, req.PolicyID); err != nil {
			return err
		}

		identifier := strings.TrimSpace(req.Identifier)
		if identifier == "" {
			if identifier, err = s.generateIdentifier(txCtx, req.PolicyID); err != nil {
				return err
			}
		}
		if err := s.lock(txCtx, identifier); err != nil {
			return err
		}
		if req.Identifier != "" {
			exists, err := s.Compliances.IdentifierExists(txCtx, identifier)
			if err != nil {
				return fmt.Errorf("failed to check identifier: %w", err)
			}
			if exists {
				return apperror.Conflict("identifier %s is already in use", identifier)
			}
		}

		record := &model.Compliance{
			Identifier:       identifier,
			Version:          initialRecordVersion,
			Status:           model.StatusUnderReview,
			ActiveInactive:   model.StateInactive,
			PolicyID:         req.PolicyID,
			ComplianceFields: fields,
			CreatedBy:        userID,
		}
		if err := s.Compliances.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to create compliance: %w", err)
		}
		if err := s.audit(txCtx, userID, model.ActionCreateCompliance, record.ID.String(), record.Identifier, map[string]any{
			"policy_id": record.PolicyID,
			"version":   record.Version,
			"title":     record.Title,
		}); err != nil {
			return err
		}

		approval, err := s.approvals.CreateForReview(txCtx, record, req.ReviewerID, req.DueDate, userID)
		if err != nil {
			return err
		}

		result = &CreateComplianceResult{
			ComplianceID:    record.ID,
			Identifier:      record.Identifier,
			Version:         record.Version,
			ApprovalID:      approval.ID,
			ApprovalVersion: approval.Version,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EditCompliance writes a new version of the item. The new version is active
// from birth while it waits for review, and its review request is versioned
// after the record ("u1.1") rather than in the submission sequence.
func (s *complianceService) EditCompliance(ctx context.Context, id uuid.UUID, req EditComplianceRequest, userID *uuid.UUID) (*EditComplianceResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields, err := req.toFields()
	if err != nil {
		return nil, err
	}

	var result *EditComplianceResult
	err = s.run(ctx, "edit_compliance", func(txCtx context.Context) error {
		source, err := s.loadCompliance(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.lock(txCtx, source.Identifier); err != nil {
			return err
		}

		chain, err := s.loadChain(txCtx, source)
		if err != nil {
			return err
		}
		for _, v := range chain {
			if v.Status == model.StatusUnderReview {
				return apperror.Conflict("version %s of %s is still under review", v.Version, v.Identifier)
			}
		}

		record := &model.Compliance{
			Identifier:        source.Identifier,
			Version:           NextRecordVersion(highestRecordVersion(chain), req.VersionKind),
			PreviousVersionID: &source.ID,
			Status:            model.StatusUnderReview,
			ActiveInactive:    model.StateActive,
			PolicyID:          source.PolicyID,
			ComplianceFields:  fields,
			CreatedBy:         userID,
		}
		if err := s.Compliances.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to create compliance version: %w", err)
		}
		if err := s.audit(txCtx, userID, model.ActionEditCompliance, record.ID.String(), record.Identifier, map[string]any{
			"source_id":    source.ID,
			"from_version": source.Version,
			"version":      record.Version,
			"version_kind": req.VersionKind,
		}); err != nil {
			return err
		}

		approval, err := s.createReviewApproval(txCtx, reviewDraft{
			record:    record,
			version:   editApprovalVersion(record.Version),
			reviewer:  req.ReviewerID,
			dueDate:   req.DueDate,
			submitter: userID,
		})
		if err != nil {
			return err
		}
		s.notify(txCtx, notification.EventReviewRequested, &approval.ReviewerID, map[string]any{
			"identifier":    record.Identifier,
			"compliance_id": record.ID,
			"approval_id":   approval.ID,
			"version":       approval.Version,
		})

		result = &EditComplianceResult{
			ComplianceID:    record.ID,
			Version:         record.Version,
			ApprovalID:      approval.ID,
			ApprovalVersion: approval.Version,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *complianceService) CloneCompliance(ctx context.Context, sourceID uuid.UUID, req CloneComplianceRequest, userID *uuid.UUID) (*CloneComplianceResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var result *CloneComplianceResult
	err := s.run(ctx, "clone_compliance", func(txCtx context.Context) error {
		source, err := s.loadCompliance(txCtx, sourceID)
		if err != nil {
			return err
		}
		if _, err := s.loadPolicy(txCtx, req.TargetPolicyID); err != nil {
			return err
		}

		fields := source.ComplianceFields
		if err := req.Overrides.apply(&fields); err != nil {
			return err
		}

		identifier, err := s.generateIdentifier(txCtx, req.TargetPolicyID)
		if err != nil {
			return err
		}
		if err := s.lock(txCtx, identifier); err != nil {
			return err
		}

		record := &model.Compliance{
			Identifier:       identifier,
			Version:          initialRecordVersion,
			Status:           model.StatusUnderReview,
			ActiveInactive:   model.StateActive,
			PolicyID:         req.TargetPolicyID,
			ComplianceFields: fields,
			CreatedBy:        userID,
		}
		if err := s.Compliances.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to create cloned compliance: %w", err)
		}
		if err := s.audit(txCtx, userID, model.ActionCloneCompliance, record.ID.String(), record.Identifier, map[string]any{
			"source_id":         source.ID,
			"source_identifier": source.Identifier,
			"target_policy_id":  req.TargetPolicyID,
		}); err != nil {
			return err
		}

		approval, err := s.approvals.CreateForReview(txCtx, record, req.ReviewerID, req.DueDate, userID)
		if err != nil {
			return err
		}

		result = &CloneComplianceResult{
			ComplianceID: record.ID,
			Identifier:   record.Identifier,
			ApprovalID:   approval.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *complianceService) GetCompliance(ctx context.Context, id uuid.UUID) (*model.Compliance, error) {
	c, err := s.loadCompliance(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return c, nil
}

func (s *complianceService) ListCompliances(ctx context.Context, filter ComplianceFilter) ([]model.Compliance, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Validation(map[string]string{"status": "must be one of Under Review, Approved, Rejected"})
	}
	if filter.ActiveInactive != "" && !filter.ActiveInactive.Valid() {
		return nil, 0, apperror.Validation(map[string]string{"active_inactive": "must be one of Active Inactive"})
	}

	items, total, err := s.Compliances.List(ctx, repository.ComplianceFilter{
		PolicyID:       filter.PolicyID,
		Identifier:     filter.Identifier,
		Status:         filter.Status,
		ActiveInactive: filter.ActiveInactive,
	}, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, repository.Classify(fmt.Errorf("failed to list compliances: %w", err))
	}
	return items, total, nil
}

func (s *complianceService) ListVersions(ctx context.Context, id uuid.UUID) ([]model.Compliance, error) {
	c, err := s.loadCompliance(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	chain, err := s.loadChain(ctx, c)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return chain, nil
}

// generateIdentifier returns COMP-{policy}-{yyyymmdd}-{6 hex chars}.
func (s *complianceService) generateIdentifier(ctx context.Context, policyID uuid.UUID) (string, error) {
	datestamp := s.Now().UTC().Format("20060102")
	for attempt := 0; attempt < 3; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		identifier := fmt.Sprintf("COMP-%s-%s-%s", policyID, datestamp, suffix)
		exists, err := s.Compliances.IdentifierExists(ctx, identifier)
		if err != nil {
			return "", fmt.Errorf("failed to check identifier: %w", err)
		}
		if !exists {
			return identifier, nil
		}
	}
	return "", apperror.Conflict("could not allocate a unique identifier, retry")
}
