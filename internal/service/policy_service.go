package service

import (
	"context"
	"errors"
	"fmt"

	"governance/internal/model"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
)

type CreatePolicyRequest struct {
	Name          string    `json:"name" validate:"required,max=255"`
	FrameworkName string    `json:"framework_name" validate:"max=255"`
	ReviewerID    uuid.UUID `json:"reviewer_id" validate:"required"`
}

// PolicyService manages the containers that own compliance items.
type PolicyService interface {
	CreatePolicy(ctx context.Context, req CreatePolicyRequest, userID *uuid.UUID) (*model.Policy, error)
	GetPolicy(ctx context.Context, id uuid.UUID) (*model.Policy, error)
	ListPolicies(ctx context.Context, page, limit int) ([]model.Policy, int64, error)
}

type policyService struct {
	*workflowCore
	users repository.UserRepository
}

func NewPolicyService(deps WorkflowDeps, users repository.UserRepository) PolicyService {
	return &policyService{workflowCore: newWorkflowCore(deps), users: users}
}

func (s *policyService) CreatePolicy(ctx context.Context, req CreatePolicyRequest, userID *uuid.UUID) (*model.Policy, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	policy := &model.Policy{
		Name:          req.Name,
		FrameworkName: req.FrameworkName,
		ReviewerID:    req.ReviewerID,
		CreatedBy:     userID,
	}
	err := s.run(ctx, "create_policy", func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, req.ReviewerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.Validation(map[string]string{"reviewer_id": "does not name an existing user"})
			}
			return fmt.Errorf("failed to load reviewer: %w", err)
		}
		if err := s.Policies.Create(txCtx, policy); err != nil {
			return fmt.Errorf("failed to create policy: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionCreatePolicy, policy.ID.String(), policy.Name, map[string]any{
			"framework_name": policy.FrameworkName,
			"reviewer_id":    policy.ReviewerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *policyService) GetPolicy(ctx context.Context, id uuid.UUID) (*model.Policy, error) {
	p, err := s.loadPolicy(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return p, nil
}

func (s *policyService) ListPolicies(ctx context.Context, page, limit int) ([]model.Policy, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	policies, total, err := s.Policies.List(ctx, page, limit)
	if err != nil {
		return nil, 0, repository.Classify(fmt.Errorf("failed to list policies: %w", err))
	}
	return policies, total, nil
}
