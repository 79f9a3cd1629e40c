package sqlite

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Budget Item Row Scanner
// ============================================================================
//
// Column order must match between itemColumns, scanArgs() and itemInsertArgs().

// itemRow holds all columns from a budget item query for scanning
type itemRow struct {
	UserID        string
	BudgetItemID  string
	CreatedAt     string
	Amount        string
	Income        int64
	AttachmentURL sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match itemColumns order exactly:
// user_id, budget_item_id, created_at, amount, income, attachment_url
func (r *itemRow) scanArgs() []interface{} {
	return []interface{}{
		&r.UserID,        // 1
		&r.BudgetItemID,  // 2
		&r.CreatedAt,     // 3
		&r.Amount,        // 4
		&r.Income,        // 5
		&r.AttachmentURL, // 6
	}
}

// toDomain converts the scanned row to a domain.BudgetItem
func (r *itemRow) toDomain() (*domain.BudgetItem, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, repository.Unavailable("parse created_at", err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, repository.Unavailable("parse amount", err)
	}

	return &domain.BudgetItem{
		BudgetItemID:  r.BudgetItemID,
		UserID:        r.UserID,
		CreatedAt:     createdAt,
		Amount:        amount,
		Income:        r.Income != 0,
		AttachmentURL: nullToString(r.AttachmentURL),
	}, nil
}

// itemColumns is the SELECT/INSERT column list for budget item queries
const itemColumns = `user_id, budget_item_id, created_at, amount, income, attachment_url`

// ============================================================================
// Budget Item Write Helpers
// ============================================================================

// itemInsertArgs prepares arguments for the budget item UPSERT
// Returns: user_id, budget_item_id, created_at, amount, income, attachment_url
func itemInsertArgs(item domain.BudgetItem) []interface{} {
	return []interface{}{
		item.UserID,
		item.BudgetItemID,
		repository.FormatTime(item.CreatedAt),
		item.Amount.String(),
		boolToInt(item.Income),
		stringToNull(item.AttachmentURL),
	}
}


