package memory

import (
	"context"
	"slices"

	"governance/internal/model"
	"governance/internal/repository"

	"github.com/google/uuid"
)

type complianceRepository struct {
	store *Store
}

func NewComplianceRepository(store *Store) repository.ComplianceRepository {
	return &complianceRepository{store: store}
}

func (r *complianceRepository) Create(_ context.Context, c *model.Compliance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.store.compliances = append(r.store.compliances, *c)
	return nil
}

func (r *complianceRepository) Update(_ context.Context, c *model.Compliance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.compliances {
		if r.store.compliances[i].ID == c.ID {
			c.UpdatedAt = r.store.now()
			r.store.compliances[i] = *c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *complianceRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Compliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.compliances {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *complianceRepository) ListByIdentifier(_ context.Context, identifier string) ([]model.Compliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []model.Compliance
	for _, c := range r.store.compliances {
		if c.Identifier == identifier {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *complianceRepository) FindLatestByStatus(_ context.Context, identifier string, status model.ComplianceStatus) (*model.Compliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := len(r.store.compliances) - 1; i >= 0; i-- {
		c := r.store.compliances[i]
		if c.Identifier == identifier && c.Status == status {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *complianceRepository) IdentifierExists(_ context.Context, identifier string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return slices.ContainsFunc(r.store.compliances, func(c model.Compliance) bool {
		return c.Identifier == identifier
	}), nil
}

func (r *complianceRepository) List(_ context.Context, filter repository.ComplianceFilter, pageNum, limit int) ([]model.Compliance, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var matched []model.Compliance
	// newest first, like the SQL store
	for i := len(r.store.compliances) - 1; i >= 0; i-- {
		c := r.store.compliances[i]
		if filter.PolicyID != nil && c.PolicyID != *filter.PolicyID {
			continue
		}
		if filter.Identifier != "" && c.Identifier != filter.Identifier {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ActiveInactive != "" && c.ActiveInactive != filter.ActiveInactive {
			continue
		}
		matched = append(matched, c)
	}
	return page(matched, pageNum, limit), int64(len(matched)), nil
}
