// Package repotest is a behavioural suite for repository.Repository implementations.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

// Factory returns a fresh, empty repository for one subtest
type Factory func(t *testing.T) repository.Repository

// NewItem builds an item whose timestamp survives microsecond-precision stores
func NewItem(userID string, amount string, income bool) domain.BudgetItem {
	return domain.BudgetItem{
		BudgetItemID: uuid.NewString(),
		UserID:       userID,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		Amount:       decimal.RequireFromString(amount),
		Income:       income,
	}
}

// AssertSameItem fails unless got and want hold the same field values
func AssertSameItem(t *testing.T, want, got domain.BudgetItem) {
	t.Helper()
	if got.BudgetItemID != want.BudgetItemID {
		t.Errorf("budgetItemId = %q, want %q", got.BudgetItemID, want.BudgetItemID)
	}
	if got.UserID != want.UserID {
		t.Errorf("userId = %q, want %q", got.UserID, want.UserID)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("createdAt = %s, want %s", got.CreatedAt, want.CreatedAt)
	}
	if !got.Amount.Equal(want.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, want.Amount)
	}
	if got.Income != want.Income {
		t.Errorf("income = %v, want %v", got.Income, want.Income)
	}
	if got.AttachmentURL != want.AttachmentURL {
		t.Errorf("attachmentUrl = %q, want %q", got.AttachmentURL, want.AttachmentURL)
	}
}

// Run exercises the gateway contract against repositories from newRepo
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("insert then find by id", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "100", true)

		created, err := repo.Insert(ctx, item)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		AssertSameItem(t, item, created)

		found, err := repo.FindByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		AssertSameItem(t, item, found)
	})

	t.Run("find by empty id is invalid argument", func(t *testing.T) {
		repo := newRepo(t)
		for _, id := range []string{"", "   "} {
			_, err := repo.FindByID(ctx, id)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("FindByID(%q) error = %v, want ErrInvalidArgument", id, err)
			}
		}
	})

	t.Run("find missing id is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list returns only the user's items", func(t *testing.T) {
		repo := newRepo(t)
		faker := gofakeit.New(42)

		owners := []string{faker.UUID(), faker.UUID(), faker.UUID()}
		want := make(map[string]map[string]bool)
		for _, owner := range owners {
			want[owner] = make(map[string]bool)
			n := faker.Number(1, 5)
			for i := 0; i < n; i++ {
				amount := decimal.NewFromFloat(faker.Price(0, 1000)).Round(2).String()
				item := NewItem(owner, amount, faker.Bool())
				if _, err := repo.Insert(ctx, item); err != nil {
					t.Fatalf("Insert: %v", err)
				}
				want[owner][item.BudgetItemID] = true
			}
		}

		for _, owner := range owners {
			items, err := repo.ListByUser(ctx, owner)
			if err != nil {
				t.Fatalf("ListByUser: %v", err)
			}
			if len(items) != len(want[owner]) {
				t.Errorf("ListByUser(%s) returned %d items, want %d", owner, len(items), len(want[owner]))
			}
			for _, item := range items {
				if item.UserID != owner {
					t.Errorf("ListByUser(%s) returned item owned by %s", owner, item.UserID)
				}
				if !want[owner][item.BudgetItemID] {
					t.Errorf("unexpected item %s", item.BudgetItemID)
				}
			}
		}

		items, err := repo.ListByUser(ctx, "nobody")
		if err != nil {
			t.Fatalf("ListByUser: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items for unknown user, got %d", len(items))
		}
	})

	t.Run("income patch touches only income", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "100", true)
		item.AttachmentURL = "https://bucket.s3.amazonaws.com/" + item.BudgetItemID
		if _, err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		if err := repo.UpdateIncomeOrAttachment(ctx, item, domain.IncomePatch{Income: false}); err != nil {
			t.Fatalf("UpdateIncomeOrAttachment: %v", err)
		}

		found, err := repo.FindByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		want := item
		want.Income = false
		AssertSameItem(t, want, found)
	})

	t.Run("attachment patch touches only attachment", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "19.99", false)
		if _, err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		url := "https://bucket.s3.amazonaws.com/" + item.BudgetItemID
		if err := repo.UpdateIncomeOrAttachment(ctx, item, domain.AttachmentPatch{AttachmentURL: url}); err != nil {
			t.Fatalf("UpdateIncomeOrAttachment: %v", err)
		}

		found, err := repo.FindByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		want := item
		want.AttachmentURL = url
		AssertSameItem(t, want, found)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "5", false)
		if _, err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		if err := repo.Delete(ctx, item); err != nil {
			t.Fatalf("first Delete: %v", err)
		}
		if err := repo.Delete(ctx, item); err != nil {
			t.Fatalf("second Delete: %v", err)
		}

		_, err := repo.FindByID(ctx, item.BudgetItemID)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error after delete = %v, want ErrNotFound", err)
		}

		items, err := repo.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("ListByUser: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty list after delete, got %d", len(items))
		}
	})

	t.Run("delete of unknown key is not an error", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Delete(ctx, NewItem("ghost", "1", true)); err != nil {
			t.Errorf("Delete: %v", err)
		}
	})

	t.Run("insert on existing key is last write wins", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "10", true)
		if _, err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		second := item
		second.Amount = decimal.RequireFromString("20")
		second.Income = false
		if _, err := repo.Insert(ctx, second); err != nil {
			t.Fatalf("second Insert: %v", err)
		}

		found, err := repo.FindByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		AssertSameItem(t, second, found)

		items, err := repo.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("ListByUser: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("expected 1 item after overwrite, got %d", len(items))
		}
	})

	t.Run("amount precision survives", func(t *testing.T) {
		repo := newRepo(t)
		item := NewItem("u1", "1234567.89", true)
		if _, err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		found, err := repo.FindByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !found.Amount.Equal(item.Amount) {
			t.Errorf("amount = %s, want %s", found.Amount, item.Amount)
		}
	})
}
