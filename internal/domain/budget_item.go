package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// BudgetItem is a single income or expense entry owned by one user
type BudgetItem struct {
	BudgetItemID  string          `json:"budgetItemId" yaml:"budgetItemId"`
	UserID        string          `json:"userId" yaml:"userId"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"createdAt"`
	Amount        decimal.Decimal `json:"amount" yaml:"amount"`
	Income        bool            `json:"income" yaml:"income"`
	AttachmentURL string          `json:"attachmentUrl" yaml:"attachmentUrl"`
}

// NewBudgetItem creates a fully populated item for userID with a fresh
// identifier, the current UTC time and an empty attachment
func NewBudgetItem(userID string, amount decimal.Decimal, income bool) BudgetItem {
	return BudgetItem{
		BudgetItemID:  uuid.NewString(),
		UserID:        userID,
		CreatedAt:     time.Now().UTC(),
		Amount:        amount,
		Income:        income,
		AttachmentURL: "",
	}
}

// OwnedBy reports whether userID owns the item
func (b BudgetItem) OwnedBy(userID string) bool {
	return b.UserID == userID
}

// Signed returns the amount with the sign implied by the income flag
func (b BudgetItem) Signed() decimal.Decimal {
	if b.Income {
		return b.Amount
	}
	return b.Amount.Neg()
}
