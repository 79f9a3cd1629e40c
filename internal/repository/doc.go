// Package repository defines the persistence gateway for budget items.
//
// The Repository interface is the store-agnostic boundary the service layer
// depends on. Implementations live in subpackages:
//
//   - memory: maps guarded by a mutex, for tests and throwaway runs
//   - sqlite: embedded database via modernc.org/sqlite (the default)
//   - dynamodb: a key-value table with a budgetItemId GSI
//   - postgres: a pgx connection pool
//
// # Keys and Indexes
//
// Items are keyed by (userId, budgetItemId). A secondary index on
// budgetItemId alone serves FindByID, which must resolve to at most one item.
// When a store returns several matches, the most recently created wins.
//
// # Errors
//
// Implementations report domain.ErrInvalidArgument for an empty identifier,
// domain.ErrNotFound for a missed lookup, domain.ErrUpdateFailed for a failed
// patch and domain.ErrStorageUnavailable for every other store fault. The
// store's own error text is always kept in the message.
//
// # Testing
//
// The repotest subpackage is a behavioural suite every implementation runs.
package repository
