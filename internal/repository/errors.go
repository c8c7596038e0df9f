package repository

import (
	"errors"
	"strings"
)

// Common repository errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Live slot errors, returned by the transactional writes that re-check
// occupancy before committing.
var (
	ErrSlotTaken      = errors.New("category already has a live virtual number")
	ErrCapReached     = errors.New("live virtual number limit reached")
	ErrAlreadyDeleted = errors.New("virtual number is deleted")
	ErrNotRecoverable = errors.New("virtual number is not recoverable")
)

// isDuplicateKeyError checks if the error is a duplicate key violation
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505") // PostgreSQL unique violation code
}
