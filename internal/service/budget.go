package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"budgettracker/internal/domain"
	"budgettracker/internal/repository"
)

// AttachmentSigner issues upload URLs for item attachments
type AttachmentSigner interface {
	// UploadURL returns a URL the client can PUT the file to, and the URL the
	// stored object will be readable at
	UploadURL(ctx context.Context, budgetItemID string) (uploadURL, objectURL string, err error)
}

// BudgetService enforces item ownership in front of the repository
type BudgetService struct {
	repo     repository.Repository
	eventBus *EventBus
	signer   AttachmentSigner
	logger   *zap.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(repo repository.Repository, eventBus *EventBus, logger *zap.Logger) *BudgetService {
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger.Named("budget"),
	}
}

// SetAttachmentSigner enables attachment uploads
func (s *BudgetService) SetAttachmentSigner(signer AttachmentSigner) {
	s.signer = signer
}

// List returns every item owned by userID
func (s *BudgetService) List(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create stores a fully populated item. Identifier, owner and timestamp are the caller's job.
func (s *BudgetService) Create(ctx context.Context, item domain.BudgetItem) (domain.BudgetItem, error) {
	created, err := s.repo.Insert(ctx, item)
	if err != nil {
		return domain.BudgetItem{}, err
	}

	s.logger.Info("budget item created",
		zap.String("user_id", created.UserID),
		zap.String("budget_item_id", created.BudgetItemID))

	s.eventBus.Publish(Event{
		Type:    EventItemCreated,
		UserID:  created.UserID,
		Payload: created,
	})
	return created, nil
}

// GetByID looks an item up by identifier alone
func (s *BudgetService) GetByID(ctx context.Context, budgetItemID string) (domain.BudgetItem, error) {
	return s.repo.FindByID(ctx, budgetItemID)
}

// Update applies patch to the item if userID owns it and returns the
// patched item. The result is computed from the loaded item rather than read
// back, since index reads may lag the write.
func (s *BudgetService) Update(ctx context.Context, userID, budgetItemID string, patch domain.Patch) (domain.BudgetItem, error) {
	if patch == nil {
		return domain.BudgetItem{}, fmt.Errorf("%w: empty patch", domain.ErrInvalidArgument)
	}

	item, err := s.owned(ctx, userID, budgetItemID, "update")
	if err != nil {
		return domain.BudgetItem{}, err
	}

	if err := s.repo.UpdateIncomeOrAttachment(ctx, item, patch); err != nil {
		return domain.BudgetItem{}, err
	}

	updated := patch.Apply(item)
	s.eventBus.Publish(Event{
		Type:    EventItemUpdated,
		UserID:  updated.UserID,
		Payload: updated,
	})
	return updated, nil
}

// Delete removes the item if userID owns it. An item that no longer exists
// counts as deleted.
func (s *BudgetService) Delete(ctx context.Context, userID, budgetItemID string) error {
	item, err := s.owned(ctx, userID, budgetItemID, "delete")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.Delete(ctx, item); err != nil {
		return err
	}

	s.logger.Info("budget item deleted",
		zap.String("user_id", item.UserID),
		zap.String("budget_item_id", item.BudgetItemID))

	s.eventBus.Publish(Event{
		Type:    EventItemDeleted,
		UserID:  item.UserID,
		Payload: map[string]string{"budgetItemId": item.BudgetItemID},
	})
	return nil
}

// Balance totals userID's items
func (s *BudgetService) Balance(ctx context.Context, userID string) (domain.Balance, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.ComputeBalance(items), nil
}

// Statement gathers userID's items and totals for export
func (s *BudgetService) Statement(ctx context.Context, userID string) (*domain.Statement, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewStatement(userID, items), nil
}

// AttachmentUploadURL issues an upload URL for the item and records the
// object URL on it
func (s *BudgetService) AttachmentUploadURL(ctx context.Context, userID, budgetItemID string) (string, error) {
	if s.signer == nil {
		return "", domain.ErrAttachmentsDisabled
	}
	if err := repository.RequireID(budgetItemID); err != nil {
		return "", err
	}

	uploadURL, objectURL, err := s.signer.UploadURL(ctx, budgetItemID)
	if err != nil {
		return "", fmt.Errorf("%w: sign upload url: %w", domain.ErrStorageUnavailable, err)
	}

	if _, err := s.Update(ctx, userID, budgetItemID, domain.AttachmentPatch{AttachmentURL: objectURL}); err != nil {
		return "", err
	}
	return uploadURL, nil
}

// owned loads the item and checks userID against its owner
func (s *BudgetService) owned(ctx context.Context, userID, budgetItemID, action string) (domain.BudgetItem, error) {
	item, err := s.repo.FindByID(ctx, budgetItemID)
	if err != nil {
		return domain.BudgetItem{}, err
	}

	if !item.OwnedBy(userID) {
		s.logger.Warn("ownership check failed",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.String("budget_item_id", budgetItemID))
		return domain.BudgetItem{}, fmt.Errorf("%w: only the owner may %s", domain.ErrForbidden, action)
	}
	return item, nil
}
