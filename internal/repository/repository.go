package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgettracker/internal/domain"
)

// Repository is the persistence gateway for budget items. It is the only
// component that touches the backing store.
type Repository interface {
	// ListByUser returns every item in userID's partition, in store order
	ListByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error)
	// FindByID looks an item up through the budgetItemId secondary index
	FindByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error)

	// Insert writes the full item unconditionally and returns it
	Insert(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error)
	// UpdateIncomeOrAttachment applies a single-field patch keyed by (userId, budgetItemId)
	UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error
	// Delete removes the item's row; a missing row is not an error
	Delete(ctx context.Context, item domain.BudgetItem) error

	// Close releases resources
	Close() error
}

// TimeLayout renders createdAt with a fixed-width fraction so that the
// text compares in the same order as the instants it encodes
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC using TimeLayout
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// RequireID rejects an empty budget item identifier before any store access
func RequireID(budgetItemID string) error {
	if strings.TrimSpace(budgetItemID) == "" {
		return fmt.Errorf("%w: budgetItemId is missing", domain.ErrInvalidArgument)
	}
	return nil
}

// Unavailable wraps a store fault as ErrStorageUnavailable, keeping the store text
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// UpdateFailed wraps a store fault during an update as ErrUpdateFailed, keeping the store text
func UpdateFailed(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrUpdateFailed, err)
}
