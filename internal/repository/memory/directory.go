package memory

import (
	"context"
	"slices"

	"governance/internal/model"
	"governance/internal/repository"

	"github.com/google/uuid"
)

type policyRepository struct {
	store *Store
}

func NewPolicyRepository(store *Store) repository.PolicyRepository {
	return &policyRepository{store: store}
}

func (r *policyRepository) Create(_ context.Context, p *model.Policy) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	r.store.policies = append(r.store.policies, *p)
	return nil
}

func (r *policyRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Policy, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.policies {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *policyRepository) List(_ context.Context, pageNum, limit int) ([]model.Policy, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := slices.Clone(r.store.policies)
	slices.Reverse(all)
	return page(all, pageNum, limit), int64(len(all)), nil
}

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(_ context.Context, u *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.store.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	r.store.users = append(r.store.users, *u)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context, pageNum, limit int) ([]model.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := slices.Clone(r.store.users)
	slices.SortFunc(all, func(a, b model.User) int {
		switch {
		case a.Username < b.Username:
			return -1
		case a.Username > b.Username:
			return 1
		}
		return 0
	})
	return page(all, pageNum, limit), int64(len(all)), nil
}

type auditRepository struct {
	store *Store
}

func NewAuditRepository(store *Store) repository.AuditRepository {
	return &auditRepository{store: store}
}

func (r *auditRepository) Log(_ context.Context, entry *model.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stamp(&entry.ID, &entry.CreatedAt, nil)
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *auditRepository) List(_ context.Context, entityID string, pageNum, limit int) ([]model.AuditLog, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var matched []model.AuditLog
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		entry := r.store.audits[i]
		if entityID != "" && entry.EntityID != entityID {
			continue
		}
		if entry.UserID != nil {
			for _, u := range r.store.users {
				if u.ID == *entry.UserID {
					entry.User = &u
					break
				}
			}
		}
		matched = append(matched, entry)
	}
	return page(matched, pageNum, limit), int64(len(matched)), nil
}
