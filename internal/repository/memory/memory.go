// Package memory implements repository.Repository with in-process maps.
package memory

import (
	"context"
	"sync"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

type key struct {
	userID       string
	budgetItemID string
}

// Repository keeps items in a primary map plus a budgetItemId index
type Repository struct {
	mu    sync.RWMutex
	items map[key]domain.BudgetItem
	byID  map[string]key
	// order preserves insertion order per user so ListByUser is stable
	order map[string][]string
}

// New creates an empty in-memory repository
func New() *Repository {
	return &Repository{
		items: make(map[key]domain.BudgetItem),
		byID:  make(map[string]key),
		order: make(map[string][]string),
	}
}

// ListByUser returns userID's items in insertion order
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.BudgetItem, 0, len(r.order[userID]))
	for _, id := range r.order[userID] {
		if item, ok := r.items[key{userID, id}]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// FindByID resolves an item through the budgetItemId index
func (r *Repository) FindByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error) {
	if err := repository.RequireID(budgetItemID); err != nil {
		return domain.BudgetItem{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.byID[budgetItemID]
	if !ok {
		return domain.BudgetItem{}, domain.ErrNotFound
	}
	item, ok := r.items[k]
	if !ok {
		return domain.BudgetItem{}, domain.ErrNotFound
	}
	return item, nil
}

// Insert stores the item, replacing any item at the same key.
// The index entry points at the latest write for the identifier.
func (r *Repository) Insert(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{item.UserID, item.BudgetItemID}
	if _, exists := r.items[k]; !exists {
		r.order[item.UserID] = append(r.order[item.UserID], item.BudgetItemID)
	}
	r.items[k] = item
	r.byID[item.BudgetItemID] = k
	return item, nil
}

// UpdateIncomeOrAttachment applies patch to the stored row. A missing row is left absent.
func (r *Repository) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{item.UserID, item.BudgetItemID}
	stored, ok := r.items[k]
	if !ok {
		return nil
	}
	r.items[k] = patch.Apply(stored)
	return nil
}

// Delete removes the item's row
func (r *Repository) Delete(ctx context.Context, item domain.BudgetItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{item.UserID, item.BudgetItemID}
	if _, ok := r.items[k]; !ok {
		return nil
	}
	delete(r.items, k)
	if r.byID[item.BudgetItemID] == k {
		r.reindex(item.BudgetItemID)
	}

	ids := r.order[item.UserID]
	for i, id := range ids {
		if id == item.BudgetItemID {
			r.order[item.UserID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// reindex points the index at the newest remaining row carrying id,
// or drops the entry when none is left. Callers hold the write lock.
func (r *Repository) reindex(id string) {
	var (
		newest domain.BudgetItem
		found  bool
	)
	for k, item := range r.items {
		if k.budgetItemID != id {
			continue
		}
		if !found || item.CreatedAt.After(newest.CreatedAt) {
			newest, found = item, true
		}
	}
	if !found {
		delete(r.byID, id)
		return
	}
	r.byID[id] = key{newest.UserID, id}
}

// Close is a no-op
func (r *Repository) Close() error {
	return nil
}
