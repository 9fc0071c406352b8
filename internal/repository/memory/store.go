// Package memory keeps the whole data set in process. It backs unit tests and
// STORE_DRIVER=memory for local runs; transactions are serialised and undone
// by restoring a snapshot.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"governance/internal/model"
	"governance/internal/repository"

	"github.com/google/uuid"
)

type txMarker struct{}

// Store is the shared backing data for every repository in this package.
type Store struct {
	txMu sync.Mutex // held for the lifetime of a transaction

	mu          sync.RWMutex
	compliances []model.Compliance
	approvals   []model.ApprovalRequest
	policies    []model.Policy
	users       []model.User
	audits      []model.AuditLog

	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

type snapshot struct {
	compliances []model.Compliance
	approvals   []model.ApprovalRequest
	policies    []model.Policy
	users       []model.User
	audits      []model.AuditLog
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		compliances: slices.Clone(s.compliances),
		approvals:   slices.Clone(s.approvals),
		policies:    slices.Clone(s.policies),
		users:       slices.Clone(s.users),
		audits:      slices.Clone(s.audits),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compliances = snap.compliances
	s.approvals = snap.approvals
	s.policies = snap.policies
	s.users = snap.users
	s.audits = snap.audits
}

// stamp fills the columns gorm would default on insert.
func (s *Store) stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.now()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil {
		*updatedAt = now
	}
}

// TxManager implements repository.TransactionManager over a Store.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (t *TxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return repository.Classify(err)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		t.store.restore(snap)
		return repository.Classify(err)
	}
	return nil
}

// LockKey is satisfied by the store-wide transaction mutex.
func (t *TxManager) LockKey(txCtx context.Context, _ string) error {
	if txCtx.Value(txMarker{}) == nil {
		return errors.New("LockKey called outside a transaction")
	}
	return nil
}

func page[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

var _ repository.TransactionManager = (*TxManager)(nil)
