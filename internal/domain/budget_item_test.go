package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewBudgetItem(t *testing.T) {
	t.Run("creates item with defaults", func(t *testing.T) {
		item := NewBudgetItem("u1", decimal.NewFromInt(100), true)

		if item.BudgetItemID == "" {
			t.Error("expected BudgetItemID to be set")
		}
		if item.UserID != "u1" {
			t.Errorf("expected UserID 'u1', got %s", item.UserID)
		}
		if !item.Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected amount 100, got %s", item.Amount)
		}
		if !item.Income {
			t.Error("expected income to be true")
		}
		if item.AttachmentURL != "" {
			t.Errorf("expected empty attachment, got %q", item.AttachmentURL)
		}
		if item.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
		if item.CreatedAt.Location().String() != "UTC" {
			t.Errorf("expected UTC timestamp, got %s", item.CreatedAt.Location())
		}
	})

	t.Run("identifiers are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := NewBudgetItem("u1", decimal.Zero, false).BudgetItemID
			if seen[id] {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
	})
}

func TestBudgetItemOwnedBy(t *testing.T) {
	item := NewBudgetItem("owner", decimal.NewFromInt(1), true)

	if !item.OwnedBy("owner") {
		t.Error("expected owner to own item")
	}
	if item.OwnedBy("someone-else") {
		t.Error("expected other user not to own item")
	}
	if item.OwnedBy("") {
		t.Error("expected empty user not to own item")
	}
}

func TestBudgetItemSigned(t *testing.T) {
	tests := []struct {
		name     string
		income   bool
		amount   string
		expected string
	}{
		{"income is positive", true, "12.50", "12.5"},
		{"expense is negative", false, "12.50", "-12.5"},
		{"zero expense", false, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := BudgetItem{Amount: decimal.RequireFromString(tt.amount), Income: tt.income}
			if got := item.Signed().String(); got != tt.expected {
				t.Errorf("Signed() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestBudgetItemJSON(t *testing.T) {
	item := NewBudgetItem("u1", decimal.RequireFromString("42.5"), false)

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)

	for _, key := range []string{`"budgetItemId"`, `"userId"`, `"createdAt"`, `"attachmentUrl":""`, `"income":false`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
	if !strings.Contains(s, `"amount":42.5`) {
		t.Errorf("expected unquoted amount in %s", s)
	}

	t.Run("amount accepts quoted numbers", func(t *testing.T) {
		var decoded BudgetItem
		if err := json.Unmarshal([]byte(`{"amount":"7.25","income":true}`), &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !decoded.Amount.Equal(decimal.RequireFromString("7.25")) {
			t.Errorf("expected 7.25, got %s", decoded.Amount)
		}
	})
}
