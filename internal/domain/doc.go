// Package domain defines the core types of the budget tracker.
//
// # Core Types
//
// BudgetItem is the sole persisted entity: an income or expense amount owned
// by one user, with an optional attachment URL.
//
// Patch is the single-field update applied to an item. It is a closed set of
// two variants, IncomePatch and AttachmentPatch, so a mixed update cannot be
// expressed.
//
// Balance and Statement are derived views used by the balance endpoint and the
// statement exporters.
//
// # Errors
//
// The sentinel errors in errors.go are the taxonomy every layer speaks:
// ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrUpdateFailed and
// ErrStorageUnavailable.
//
// # Design Principles
//
// - Value types, copied rather than shared
// - No database or external service dependencies
// - Money as shopspring/decimal, never float
package domain
