package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIncomePatch(t *testing.T) {
	item := NewBudgetItem("u1", decimal.NewFromInt(100), true)
	item.AttachmentURL = "https://bucket.s3.amazonaws.com/x"

	patch := IncomePatch{Income: false}
	if patch.Attribute() != AttrIncome {
		t.Errorf("expected attribute %s, got %s", AttrIncome, patch.Attribute())
	}
	if patch.Value() != false {
		t.Errorf("expected value false, got %v", patch.Value())
	}

	updated := patch.Apply(item)

	if updated.Income {
		t.Error("expected income to be false")
	}
	if !updated.Amount.Equal(item.Amount) {
		t.Errorf("amount changed: %s -> %s", item.Amount, updated.Amount)
	}
	if updated.AttachmentURL != item.AttachmentURL {
		t.Errorf("attachment changed: %s -> %s", item.AttachmentURL, updated.AttachmentURL)
	}
	if !updated.CreatedAt.Equal(item.CreatedAt) || updated.UserID != item.UserID || updated.BudgetItemID != item.BudgetItemID {
		t.Error("immutable fields changed")
	}
	if !item.Income {
		t.Error("Apply mutated the original item")
	}
}

func TestAttachmentPatch(t *testing.T) {
	item := NewBudgetItem("u1", decimal.NewFromInt(5), false)

	patch := AttachmentPatch{AttachmentURL: "https://bucket.s3.amazonaws.com/" + item.BudgetItemID}
	if patch.Attribute() != AttrAttachmentURL {
		t.Errorf("expected attribute %s, got %s", AttrAttachmentURL, patch.Attribute())
	}

	updated := patch.Apply(item)

	if updated.AttachmentURL != patch.AttachmentURL {
		t.Errorf("expected %s, got %s", patch.AttachmentURL, updated.AttachmentURL)
	}
	if updated.Income != item.Income {
		t.Error("income changed")
	}
	if !updated.Amount.Equal(item.Amount) {
		t.Error("amount changed")
	}
}
