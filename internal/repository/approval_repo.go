package repository

import (
	"context"

	"governance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	// ListByIdentifier returns every submission for identifier in creation order.
	ListByIdentifier(ctx context.Context, identifier string) ([]model.ApprovalRequest, error)
	// ListVersions returns the raw version strings recorded for identifier.
	ListVersions(ctx context.Context, identifier string) ([]string, error)
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool, page, limit int) ([]model.ApprovalRequest, int64, error)
	Update(ctx context.Context, req *model.ApprovalRequest) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (r *approvalRepository) ListByIdentifier(ctx context.Context, identifier string) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	if err := GetDB(ctx, r.db).
		Where("identifier = ?", identifier).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) ListVersions(ctx context.Context, identifier string) ([]string, error) {
	var versions []string
	if err := GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("identifier = ?", identifier).
		Pluck("version", &versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *approvalRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool, page, limit int) ([]model.ApprovalRequest, int64, error) {
	var requests []model.ApprovalRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ApprovalRequest{}).Where("reviewer_id = ?", reviewerID)
	if pendingOnly {
		query = query.Where("approved_not IS NULL")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Where("reviewer_id = ?", reviewerID)
	if pendingOnly {
		fetchQuery = fetchQuery.Where("approved_not IS NULL")
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *approvalRepository) Update(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
