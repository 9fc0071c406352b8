package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"governance/pkg/apperror"
)

var (
	// ErrNotFound is returned by every repository when a lookup misses.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// SQLSTATE codes the store reacts to.
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// notFound normalises gorm's miss into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// Classify turns infrastructure errors into apperror codes. Errors that are
// already classified pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.From(err); ok {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound("record not found")
	}
	if errors.Is(err, ErrDuplicate) {
		return apperror.Conflict("a conflicting row already exists")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Storage(err, "store call did not complete in time")
	}

	switch pgCode(err) {
	case pgLockNotAvailable:
		return apperror.Conflict("another operation holds this compliance item, retry with fresh state")
	case pgUniqueViolation:
		return apperror.Conflict("a conflicting row already exists")
	case pgSerializationFailure, pgDeadlockDetected:
		return apperror.Storage(err, "transaction aborted by concurrent update")
	}
	return apperror.Storage(err, "storage failure")
}
