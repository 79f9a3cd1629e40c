package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance totals a set of budget items
type Balance struct {
	Income  decimal.Decimal `json:"income" yaml:"income"`
	Expense decimal.Decimal `json:"expense" yaml:"expense"`
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
}

// ComputeBalance sums income and expense amounts. Balance is income minus expense.
func ComputeBalance(items []BudgetItem) Balance {
	income := decimal.Zero
	expense := decimal.Zero
	for _, item := range items {
		if item.Income {
			income = income.Add(item.Amount)
		} else {
			expense = expense.Add(item.Amount)
		}
	}
	return Balance{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// Statement is a user's items with totals, as handed to exporters
type Statement struct {
	UserID      string       `json:"userId" yaml:"userId"`
	GeneratedAt time.Time    `json:"generatedAt" yaml:"generatedAt"`
	Items       []BudgetItem `json:"items" yaml:"items"`
	Balance     Balance      `json:"balance" yaml:"balance"`
}

// NewStatement builds a statement for userID over items
func NewStatement(userID string, items []BudgetItem) *Statement {
	if items == nil {
		items = []BudgetItem{}
	}
	return &Statement{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
		Items:       items,
		Balance:     ComputeBalance(items),
	}
}
