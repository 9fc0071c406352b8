package memory

import (
	"context"

	"governance/internal/model"
	"governance/internal/repository"

	"github.com/google/uuid"
)

type approvalRepository struct {
	store *Store
}

func NewApprovalRepository(store *Store) repository.ApprovalRepository {
	return &approvalRepository{store: store}
}

func (r *approvalRepository) Create(_ context.Context, req *model.ApprovalRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stamp(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	r.store.approvals = append(r.store.approvals, *req)
	return nil
}

func (r *approvalRepository) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, a := range r.store.approvals {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *approvalRepository) ListByIdentifier(_ context.Context, identifier string) ([]model.ApprovalRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []model.ApprovalRequest
	for _, a := range r.store.approvals {
		if a.Identifier == identifier {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *approvalRepository) ListVersions(_ context.Context, identifier string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []string
	for _, a := range r.store.approvals {
		if a.Identifier == identifier {
			out = append(out, a.Version)
		}
	}
	return out, nil
}

func (r *approvalRepository) ListByReviewer(_ context.Context, reviewerID uuid.UUID, pendingOnly bool, pageNum, limit int) ([]model.ApprovalRequest, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var matched []model.ApprovalRequest
	for i := len(r.store.approvals) - 1; i >= 0; i-- {
		a := r.store.approvals[i]
		if a.ReviewerID != reviewerID {
			continue
		}
		if pendingOnly && !a.IsPending() {
			continue
		}
		matched = append(matched, a)
	}
	return page(matched, pageNum, limit), int64(len(matched)), nil
}

func (r *approvalRepository) Update(_ context.Context, req *model.ApprovalRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.approvals {
		if r.store.approvals[i].ID == req.ID {
			req.UpdatedAt = r.store.now()
			r.store.approvals[i] = *req
			return nil
		}
	}
	return repository.ErrNotFound
}
