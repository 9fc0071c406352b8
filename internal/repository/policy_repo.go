package repository

import (
	"context"

	"governance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PolicyRepository resolves the container that owns compliance items.
type PolicyRepository interface {
	Create(ctx context.Context, policy *model.Policy) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Policy, error)
	List(ctx context.Context, page, limit int) ([]model.Policy, int64, error)
}

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) Create(ctx context.Context, policy *model.Policy) error {
	return GetDB(ctx, r.db).Create(policy).Error
}

func (r *policyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Policy, error) {
	var policy model.Policy
	if err := GetDB(ctx, r.db).First(&policy, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &policy, nil
}

func (r *policyRepository) List(ctx context.Context, page, limit int) ([]model.Policy, int64, error) {
	var policies []model.Policy
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Policy{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&policies).Error; err != nil {
		return nil, 0, err
	}

	return policies, total, nil
}
