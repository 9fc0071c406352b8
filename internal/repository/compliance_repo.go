package repository

import (
	"context"

	"governance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplianceFilter narrows List; zero values match everything.
type ComplianceFilter struct {
	PolicyID       *uuid.UUID
	Identifier     string
	Status         model.ComplianceStatus
	ActiveInactive model.ActiveState
}

type ComplianceRepository interface {
	Create(ctx context.Context, c *model.Compliance) error
	Update(ctx context.Context, c *model.Compliance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compliance, error)
	// ListByIdentifier returns every version of an item, oldest first.
	ListByIdentifier(ctx context.Context, identifier string) ([]model.Compliance, error)
	// FindLatestByStatus returns the newest version of identifier in status.
	FindLatestByStatus(ctx context.Context, identifier string, status model.ComplianceStatus) (*model.Compliance, error)
	IdentifierExists(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context, filter ComplianceFilter, page, limit int) ([]model.Compliance, int64, error)
}

type complianceRepository struct {
	db *gorm.DB
}

func NewComplianceRepository(db *gorm.DB) ComplianceRepository {
	return &complianceRepository{db: db}
}

func (r *complianceRepository) Create(ctx context.Context, c *model.Compliance) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *complianceRepository) Update(ctx context.Context, c *model.Compliance) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *complianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Compliance, error) {
	var c model.Compliance
	if err := GetDB(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *complianceRepository) ListByIdentifier(ctx context.Context, identifier string) ([]model.Compliance, error) {
	var versions []model.Compliance
	if err := GetDB(ctx, r.db).
		Where("identifier = ?", identifier).
		Order("created_at ASC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *complianceRepository) FindLatestByStatus(ctx context.Context, identifier string, status model.ComplianceStatus) (*model.Compliance, error) {
	var c model.Compliance
	if err := GetDB(ctx, r.db).
		Where("identifier = ? AND status = ?", identifier, status).
		Order("created_at DESC").
		First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *complianceRepository) IdentifierExists(ctx context.Context, identifier string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Compliance{}).
		Where("identifier = ?", identifier).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *complianceRepository) List(ctx context.Context, filter ComplianceFilter, page, limit int) ([]model.Compliance, int64, error) {
	var items []model.Compliance
	var total int64

	query := r.applyFilter(GetDB(ctx, r.db).Model(&model.Compliance{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := r.applyFilter(GetDB(ctx, r.db), filter)
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *complianceRepository) applyFilter(query *gorm.DB, filter ComplianceFilter) *gorm.DB {
	if filter.PolicyID != nil {
		query = query.Where("policy_id = ?", *filter.PolicyID)
	}
	if filter.Identifier != "" {
		query = query.Where("identifier = ?", filter.Identifier)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ActiveInactive != "" {
		query = query.Where("active_inactive = ?", filter.ActiveInactive)
	}
	return query
}
