// Package postgres implements repository.Repository on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

const itemColumns = `user_id, budget_item_id, created_at, amount::text, income, attachment_url`

// Repository stores budget items in a single budget_items table
type Repository struct {
	Pool *pgxpool.Pool
}

// New connects to dsn and migrates the schema
func New(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	repo := &Repository{Pool: pool}
	if err := repo.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	_, err := r.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS budget_items (
			user_id TEXT NOT NULL,
			budget_item_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			amount NUMERIC NOT NULL,
			income BOOLEAN NOT NULL DEFAULT FALSE,
			attachment_url TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, budget_item_id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_items_id ON budget_items (budget_item_id);
	`)
	return err
}

func scanItem(row pgx.Row) (domain.BudgetItem, error) {
	var (
		item   domain.BudgetItem
		amount string
	)
	if err := row.Scan(
		&item.UserID,
		&item.BudgetItemID,
		&item.CreatedAt,
		&amount,
		&item.Income,
		&item.AttachmentURL,
	); err != nil {
		return domain.BudgetItem{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("parse amount", err)
	}
	item.Amount = parsed
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}

// ListByUser returns userID's items, oldest first
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM budget_items
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, repository.Unavailable("query budget items", err)
	}
	defer rows.Close()

	items := make([]domain.BudgetItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, repository.Unavailable("scan budget item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate budget items", err)
	}
	return items, nil
}

// FindByID looks the item up by its identifier. The unique index allows at
// most one match; the newest row wins otherwise.
func (r *Repository) FindByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error) {
	if err := repository.RequireID(budgetItemID); err != nil {
		return domain.BudgetItem{}, err
	}

	item, err := scanItem(r.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+`
		 FROM budget_items
		 WHERE budget_item_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		budgetItemID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BudgetItem{}, fmt.Errorf("%w: %s", domain.ErrNotFound, budgetItemID)
	}
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("query budget item", err)
	}
	return item, nil
}

// Insert upserts the full item on (user_id, budget_item_id)
func (r *Repository) Insert(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error) {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO budget_items (user_id, budget_item_id, created_at, amount, income, attachment_url)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6)
		 ON CONFLICT (user_id, budget_item_id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			amount = EXCLUDED.amount,
			income = EXCLUDED.income,
			attachment_url = EXCLUDED.attachment_url`,
		item.UserID,
		item.BudgetItemID,
		item.CreatedAt.UTC().Truncate(time.Microsecond),
		item.Amount.String(),
		item.Income,
		item.AttachmentURL,
	)
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("insert budget item", err)
	}
	return item, nil
}

// UpdateIncomeOrAttachment sets the single column the patch names
func (r *Repository) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	var query string
	switch patch.(type) {
	case domain.IncomePatch:
		query = `UPDATE budget_items SET income = $1 WHERE user_id = $2 AND budget_item_id = $3`
	case domain.AttachmentPatch:
		query = `UPDATE budget_items SET attachment_url = $1 WHERE user_id = $2 AND budget_item_id = $3`
	default:
		return fmt.Errorf("%w: unsupported patch %T", domain.ErrInvalidArgument, patch)
	}

	if _, err := r.Pool.Exec(ctx, query, patch.Value(), item.UserID, item.BudgetItemID); err != nil {
		return repository.UpdateFailed(err)
	}
	return nil
}

// Delete removes the item's row. A missing row is not an error.
func (r *Repository) Delete(ctx context.Context, item domain.BudgetItem) error {
	_, err := r.Pool.Exec(ctx,
		`DELETE FROM budget_items WHERE user_id = $1 AND budget_item_id = $2`,
		item.UserID, item.BudgetItemID,
	)
	if err != nil {
		return repository.Unavailable("delete budget item", err)
	}
	return nil
}

// Close releases the connection pool
func (r *Repository) Close() error {
	r.Pool.Close()
	return nil
}
