package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository/memory"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestService(t *testing.T) (*BudgetService, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	return NewBudgetService(repo, NewEventBus(), nil), repo
}

func mustCreate(t *testing.T, svc *BudgetService, userID, amount string, income bool) domain.BudgetItem {
	t.Helper()
	item, err := svc.Create(context.Background(), domain.NewBudgetItem(userID, decimal.RequireFromString(amount), income))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return item
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

type fakeSigner struct {
	err error
}

func (f fakeSigner) UploadURL(_ context.Context, id string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "https://upload.example/" + id + "?sig=abc", "https://bucket.s3.amazonaws.com/" + id, nil
}

// failingRepo wraps the memory repository and fails chosen operations
type failingRepo struct {
	*memory.Repository
	updateErr error
	deleteErr error
}

func (f *failingRepo) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Repository.UpdateIncomeOrAttachment(ctx, item, patch)
}

func (f *failingRepo) Delete(ctx context.Context, item domain.BudgetItem) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Repository.Delete(ctx, item)
}

// laggingRepo accepts updates without applying them, like a secondary index
// that has not caught up with the write yet
type laggingRepo struct {
	*memory.Repository
}

func (l *laggingRepo) UpdateIncomeOrAttachment(ctx context.Context, item domain.BudgetItem, patch domain.Patch) error {
	return nil
}

// ============================================================================
// Ownership
// ============================================================================

func TestCreateUpdateDeleteScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	item := mustCreate(t, svc, "u1", "100", true)
	if !item.Income || item.AttachmentURL != "" || item.BudgetItemID == "" {
		t.Fatalf("unexpected created item: %+v", item)
	}

	if _, err := svc.Update(ctx, "u1", item.BudgetItemID, domain.IncomePatch{Income: false}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.GetByID(ctx, item.BudgetItemID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Income {
		t.Error("income should be false after update")
	}
	if !got.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("amount changed to %s", got.Amount)
	}

	assertIs(t, svc.Delete(ctx, "u2", item.BudgetItemID), domain.ErrForbidden)

	if err := svc.Delete(ctx, "u1", item.BudgetItemID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.GetByID(ctx, item.BudgetItemID)
	assertIs(t, err, domain.ErrNotFound)
}

func TestGetByIDReturnsCreator(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	faker := gofakeit.New(7)

	for i := 0; i < 25; i++ {
		owner := faker.UUID()
		item := mustCreate(t, svc, owner, decimal.NewFromFloat(faker.Price(0, 5000)).String(), faker.Bool())

		got, err := svc.GetByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.UserID != owner {
			t.Fatalf("userId = %q, want %q", got.UserID, owner)
		}
	}
}

func TestNonOwnerIsForbidden(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	faker := gofakeit.New(11)

	for i := 0; i < 25; i++ {
		owner, intruder := faker.UUID(), faker.UUID()
		item := mustCreate(t, svc, owner, "42.5", faker.Bool())

		patches := []domain.Patch{
			domain.IncomePatch{Income: !item.Income},
			domain.AttachmentPatch{AttachmentURL: faker.URL()},
		}
		for _, patch := range patches {
			_, err := svc.Update(ctx, intruder, item.BudgetItemID, patch)
			assertIs(t, err, domain.ErrForbidden)
			if !strings.Contains(err.Error(), "only the owner may update") {
				t.Errorf("unexpected message: %v", err)
			}
		}
		assertIs(t, svc.Delete(ctx, intruder, item.BudgetItemID), domain.ErrForbidden)

		got, err := svc.GetByID(ctx, item.BudgetItemID)
		if err != nil {
			t.Fatalf("item should survive: %v", err)
		}
		if got.Income != item.Income || got.AttachmentURL != "" || !got.Amount.Equal(item.Amount) {
			t.Fatalf("item changed by non-owner: %+v", got)
		}
	}
}

func TestUpdateReturnsPatchedItem(t *testing.T) {
	svc := NewBudgetService(&laggingRepo{Repository: memory.New()}, nil, nil)
	item := mustCreate(t, svc, "u1", "12.50", true)

	updated, err := svc.Update(context.Background(), "u1", item.BudgetItemID, domain.IncomePatch{Income: false})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Income {
		t.Error("returned item should carry the patched income")
	}
	if updated.BudgetItemID != item.BudgetItemID || !updated.Amount.Equal(item.Amount) {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateMissingItemIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "u1", "does-not-exist", domain.IncomePatch{Income: true})
	assertIs(t, err, domain.ErrNotFound)
}

func TestUpdateRejectsNilPatch(t *testing.T) {
	svc, _ := newTestService(t)
	item := mustCreate(t, svc, "u1", "1", false)
	_, err := svc.Update(context.Background(), "u1", item.BudgetItemID, nil)
	assertIs(t, err, domain.ErrInvalidArgument)
}

func TestUpdateEmptyIDIsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "u1", "", domain.IncomePatch{Income: true})
	assertIs(t, err, domain.ErrInvalidArgument)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	item := mustCreate(t, svc, "u1", "5", false)

	for i := 0; i < 3; i++ {
		if err := svc.Delete(ctx, "u1", item.BudgetItemID); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
}

func TestPatchesTouchOneField(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	item := mustCreate(t, svc, "u1", "250.75", true)

	if _, err := svc.Update(ctx, "u1", item.BudgetItemID, domain.AttachmentPatch{AttachmentURL: "https://b.s3.amazonaws.com/x"}); err != nil {
		t.Fatalf("attachment update: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", item.BudgetItemID, domain.IncomePatch{Income: false}); err != nil {
		t.Fatalf("income update: %v", err)
	}

	got, _ := svc.GetByID(ctx, item.BudgetItemID)
	if got.AttachmentURL != "https://b.s3.amazonaws.com/x" {
		t.Errorf("attachmentUrl = %q", got.AttachmentURL)
	}
	if got.Income {
		t.Error("income should be false")
	}
	if !got.Amount.Equal(item.Amount) || !got.CreatedAt.Equal(item.CreatedAt) || got.UserID != item.UserID {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

// ============================================================================
// Error propagation
// ============================================================================

func TestStoreErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: memory.New()}
	svc := NewBudgetService(repo, nil, nil)
	item := mustCreate(t, svc, "u1", "1", false)

	updateErr := errors.New("unable to update budget item: throttled")
	repo.updateErr = updateErr
	if _, err := svc.Update(ctx, "u1", item.BudgetItemID, domain.IncomePatch{Income: true}); err != updateErr {
		t.Fatalf("expected the store error unchanged, got %v", err)
	}

	deleteErr := errors.New("connection reset")
	repo.deleteErr = deleteErr
	if err := svc.Delete(ctx, "u1", item.BudgetItemID); err != deleteErr {
		t.Fatalf("expected the store error unchanged, got %v", err)
	}
}

// ============================================================================
// Balance, statement, attachments
// ============================================================================

func TestBalance(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "u1", "1000", true)
	mustCreate(t, svc, "u1", "250.50", false)
	mustCreate(t, svc, "u1", "49.50", false)
	mustCreate(t, svc, "u2", "999", true)

	balance, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Income.String() != "1000" || balance.Expense.String() != "300" || balance.Balance.String() != "700" {
		t.Fatalf("unexpected balance: %+v", balance)
	}
}

func TestStatementOnlyHoldsCallersItems(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "u1", "10", true)
	mustCreate(t, svc, "u2", "20", true)

	stmt, err := svc.Statement(context.Background(), "u1")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(stmt.Items) != 1 || stmt.Items[0].UserID != "u1" {
		t.Fatalf("unexpected items: %+v", stmt.Items)
	}
	if stmt.UserID != "u1" || stmt.Balance.Balance.String() != "10" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestAttachmentUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc, _ := newTestService(t)
		item := mustCreate(t, svc, "u1", "1", false)
		_, err := svc.AttachmentUploadURL(ctx, "u1", item.BudgetItemID)
		assertIs(t, err, domain.ErrAttachmentsDisabled)
	})

	t.Run("records object url", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAttachmentSigner(fakeSigner{})
		item := mustCreate(t, svc, "u1", "1", false)

		uploadURL, err := svc.AttachmentUploadURL(ctx, "u1", item.BudgetItemID)
		if err != nil {
			t.Fatalf("upload url: %v", err)
		}
		if !strings.HasPrefix(uploadURL, "https://upload.example/"+item.BudgetItemID) {
			t.Errorf("uploadUrl = %q", uploadURL)
		}

		got, _ := svc.GetByID(ctx, item.BudgetItemID)
		if got.AttachmentURL != "https://bucket.s3.amazonaws.com/"+item.BudgetItemID {
			t.Errorf("attachmentUrl = %q", got.AttachmentURL)
		}
	})

	t.Run("non owner", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAttachmentSigner(fakeSigner{})
		item := mustCreate(t, svc, "u1", "1", false)
		_, err := svc.AttachmentUploadURL(ctx, "u2", item.BudgetItemID)
		assertIs(t, err, domain.ErrForbidden)
	})

	t.Run("signer failure", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAttachmentSigner(fakeSigner{err: errors.New("no credentials")})
		item := mustCreate(t, svc, "u1", "1", false)
		_, err := svc.AttachmentUploadURL(ctx, "u1", item.BudgetItemID)
		assertIs(t, err, domain.ErrStorageUnavailable)
	})

	t.Run("empty id", func(t *testing.T) {
		svc, _ := newTestService(t)
		svc.SetAttachmentSigner(fakeSigner{})
		_, err := svc.AttachmentUploadURL(ctx, "u1", " ")
		assertIs(t, err, domain.ErrInvalidArgument)
	})
}

// ============================================================================
// Events
// ============================================================================

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	bus := NewEventBus()
	events := make(chan Event, 10)
	bus.Subscribe(events)
	svc := NewBudgetService(memory.New(), bus, nil)

	item := mustCreate(t, svc, "u1", "3", true)
	if _, err := svc.Update(ctx, "u1", item.BudgetItemID, domain.IncomePatch{Income: false}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "u1", item.BudgetItemID); err != nil {
		t.Fatal(err)
	}
	_ = svc.Delete(ctx, "u2", item.BudgetItemID)

	want := []EventType{EventItemCreated, EventItemUpdated, EventItemDeleted}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type != typ {
				t.Fatalf("event type = %s, want %s", ev.Type, typ)
			}
			if ev.UserID != "u1" {
				t.Fatalf("event user = %s, want u1", ev.UserID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", typ)
		}
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}

func TestUpdatedEventCarriesPatchedItem(t *testing.T) {
	bus := NewEventBus()
	events := make(chan Event, 10)
	bus.Subscribe(events)
	svc := NewBudgetService(memory.New(), bus, nil)

	item := mustCreate(t, svc, "u1", "3", true)
	<-events

	if _, err := svc.Update(context.Background(), "u1", item.BudgetItemID, domain.IncomePatch{Income: false}); err != nil {
		t.Fatal(err)
	}
	ev := <-events
	patched, ok := ev.Payload.(domain.BudgetItem)
	if !ok {
		t.Fatalf("payload type %T", ev.Payload)
	}
	if patched.Income {
		t.Error("payload should reflect the patch")
	}
}

func TestEventBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	slow := make(chan Event)
	bus.Subscribe(slow)

	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Type: EventItemCreated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
