package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	// RunInTx runs fn in one transaction. Errors that escape are already
	// classified into apperror codes.
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// LockKey serialises transactions on key until the surrounding
	// transaction ends. It must be called with a txCtx.
	LockKey(txCtx context.Context, key string) error
}

// TxOptions bounds every transaction started by the manager.
type TxOptions struct {
	Timeout     time.Duration // whole call, retries included
	LockTimeout time.Duration // wait for a per-key lock
	MaxRetries  uint64        // serialization failures and deadlocks only
}

type transactionManager struct {
	db   *gorm.DB
	opts TxOptions
}

func NewTransactionManager(db *gorm.DB, opts TxOptions) TransactionManager {
	return &transactionManager{db: db, opts: opts}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newTxBackOff(), t.opts.MaxRetries),
		ctx,
	)

	err := backoff.Retry(func() error {
		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := context.WithValue(ctx, txKey, tx)
			return fn(txCtx)
		})
		if err == nil {
			return nil
		}
		if isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)

	return Classify(err)
}

func (t *transactionManager) LockKey(txCtx context.Context, key string) error {
	tx, ok := txCtx.Value(txKey).(*gorm.DB)
	if !ok {
		return errors.New("LockKey called outside a transaction")
	}
	tx = tx.WithContext(txCtx)

	if t.opts.LockTimeout > 0 {
		// SET does not accept bind parameters; the value is an integer.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.opts.LockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	// Use advisory lock so racing workflow operations on one identifier queue up
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return fmt.Errorf("failed to lock %q: %w", key, err)
	}
	return nil
}

func newTxBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
