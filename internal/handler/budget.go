package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"budgettracker/internal/auth"
	"budgettracker/internal/codec"
	"budgettracker/internal/domain"
	"budgettracker/internal/service"
)

// BudgetHandler handles budget item API requests
type BudgetHandler struct {
	svc    *service.BudgetService
	logger *zap.Logger
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(svc *service.BudgetService, logger *zap.Logger) *BudgetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetHandler{svc: svc, logger: logger.Named("handler")}
}

// CreateRequest is the body of POST /budgets. Amount may be a JSON number or string.
type CreateRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Income bool             `json:"income"`
}

// UpdateRequest is the body of PATCH /budgets/{id}. Exactly one field must be set.
type UpdateRequest struct {
	Income        *bool   `json:"income"`
	AttachmentURL *string `json:"attachmentUrl"`
}

// Patch converts the request into a single-field patch
func (r UpdateRequest) Patch() (domain.Patch, error) {
	switch {
	case r.Income != nil && r.AttachmentURL != nil:
		return nil, fmt.Errorf("%w: set either income or attachmentUrl, not both", domain.ErrInvalidArgument)
	case r.Income != nil:
		return domain.IncomePatch{Income: *r.Income}, nil
	case r.AttachmentURL != nil:
		return domain.AttachmentPatch{AttachmentURL: *r.AttachmentURL}, nil
	default:
		return nil, fmt.Errorf("%w: body must set income or attachmentUrl", domain.ErrInvalidArgument)
	}
}

type itemResponse struct {
	Item domain.BudgetItem `json:"item"`
}

type itemsResponse struct {
	Items []domain.BudgetItem `json:"items"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
}

// List returns the caller's items
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "Failed to list budget items", err)
		return
	}

	writeJSON(w, itemsResponse{Items: items}, http.StatusOK)
}

// Create stores a new item owned by the caller
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount == nil {
		writeError(w, "Invalid request body", "amount is required", http.StatusBadRequest)
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, "Invalid request body", "amount must not be negative", http.StatusBadRequest)
		return
	}

	item, err := h.svc.Create(r.Context(), domain.NewBudgetItem(userID, *req.Amount, req.Income))
	if err != nil {
		h.fail(w, r, "Failed to create budget item", err)
		return
	}

	writeJSON(w, itemResponse{Item: item}, http.StatusCreated)
}

// Get returns one of the caller's items
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	item, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Failed to get budget item", err)
		return
	}
	if !item.OwnedBy(userID) {
		h.fail(w, r, "Failed to get budget item", fmt.Errorf("%w: only the owner may read", domain.ErrForbidden))
		return
	}

	writeJSON(w, itemResponse{Item: item}, http.StatusOK)
}

// Update applies an income or attachment patch and returns the stored item
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	item, err := h.svc.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.fail(w, r, "Failed to update budget item", err)
		return
	}

	writeJSON(w, itemResponse{Item: item}, http.StatusOK)
}

// Delete removes one of the caller's items
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.fail(w, r, "Failed to delete budget item", err)
		return
	}

	writeJSON(w, struct{}{}, http.StatusOK)
}

// AttachmentUploadURL issues a pre-signed upload URL for the item's attachment
func (h *BudgetHandler) AttachmentUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	uploadURL, err := h.svc.AttachmentUploadURL(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Failed to generate upload url", err)
		return
	}

	writeJSON(w, uploadResponse{UploadURL: uploadURL}, http.StatusCreated)
}

// Balance returns the caller's income, expense and balance totals
func (h *BudgetHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	balance, err := h.svc.Balance(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "Failed to compute balance", err)
		return
	}

	writeJSON(w, balance, http.StatusOK)
}

// Export downloads the caller's statement as json, yaml or pdf
func (h *BudgetHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	exporter, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.fail(w, r, "Unsupported export format", err)
		return
	}

	stmt, err := h.svc.Statement(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "Failed to build statement", err)
		return
	}

	// Render fully before writing so a failure can still produce an error response
	var buf bytes.Buffer
	if err := exporter.Export(stmt, &buf); err != nil {
		h.fail(w, r, "Failed to export statement", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", codec.Filename(stmt, exporter.Format())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// caller returns the authenticated user, writing a 401 if there is none
func (h *BudgetHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.fail(w, r, "Unauthorized", err)
		return "", false
	}
	return userID, true
}

// fail maps err onto a status code and writes the error response
func (h *BudgetHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		h.logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	}
	writeError(w, msg, err.Error(), status)
}

// StatusFor classifies an error from the service or auth layers
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAttachmentsDisabled), errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
