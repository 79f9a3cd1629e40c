package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer keeps :memory: databases on a single connection and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS budget_items (
		user_id TEXT NOT NULL,
		budget_item_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		amount TEXT NOT NULL,
		income INTEGER NOT NULL DEFAULT 0,
		attachment_url TEXT,
		PRIMARY KEY (user_id, budget_item_id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_items_id ON budget_items(budget_item_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListByUser returns every item owned by userID
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM budget_items
		WHERE user_id = ?
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, repository.Unavailable("query budget items", err)
	}
	defer rows.Close()

	items := make([]domain.BudgetItem, 0)
	for rows.Next() {
		var row itemRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, repository.Unavailable("scan budget item", err)
		}
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, repository.Unavailable("iterate budget items", err)
	}

	return items, nil
}

// FindByID looks an item up by budget_item_id, newest first
func (r *Repository) FindByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error) {
	if err := repository.RequireID(budgetItemID); err != nil {
		return domain.BudgetItem{}, err
	}

	var row itemRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM budget_items
		WHERE budget_item_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, budgetItemID).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.BudgetItem{}, fmt.Errorf("%w: %s", domain.ErrNotFound, budgetItemID)
	}
	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("query budget item", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return domain.BudgetItem{}, err
	}
	return *item, nil
}

// Insert writes the item, overwriting any row with the same key
func (r *Repository) Insert(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, budget_item_id) DO UPDATE SET
			created_at = excluded.created_at,
			amount = excluded.amount,
			income = excluded.income,
			attachment_url = excluded.attachment_url
	`, itemInsertArgs(item)...)

	if err != nil {
		return domain.BudgetItem{}, repository.Unavailable("insert budget item", err)
	}

	return item, nil
}

// UpdateIncomeOrAttachment writes the single column the patch names
func (r *Repository) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	var (
		query string
		value interface{}
	)

	switch p := patch.(type) {
	case domain.IncomePatch:
		query = `UPDATE budget_items SET income = ? WHERE user_id = ? AND budget_item_id = ?`
		value = boolToInt(p.Income)
	case domain.AttachmentPatch:
		query = `UPDATE budget_items SET attachment_url = ? WHERE user_id = ? AND budget_item_id = ?`
		value = stringToNull(p.AttachmentURL)
	default:
		return fmt.Errorf("%w: unsupported patch %T", domain.ErrInvalidArgument, patch)
	}

	if _, err := r.db.ExecContext(ctx, query, value, item.UserID, item.BudgetItemID); err != nil {
		return repository.UpdateFailed(err)
	}

	return nil
}

// Delete removes the item's row
func (r *Repository) Delete(ctx context.Context, item domain.BudgetItem) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM budget_items WHERE user_id = ? AND budget_item_id = ?
	`, item.UserID, item.BudgetItemID)
	if err != nil {
		return repository.Unavailable("delete budget item", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
