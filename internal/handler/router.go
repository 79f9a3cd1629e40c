package handler

import (
	"net/http"
)

// NewRouter wires the budget API. protect authenticates a route; events
// serves the SSE stream and is protected too.
func NewRouter(h *BudgetHandler, events http.Handler, protect Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protect(fn))
	}

	// Budget item endpoints
	route("GET /budgets", h.List)
	route("POST /budgets", h.Create)
	route("GET /budgets/balance", h.Balance)
	route("GET /budgets/export/{format}", h.Export)
	route("GET /budgets/{id}", h.Get)
	route("PATCH /budgets/{id}", h.Update)
	route("DELETE /budgets/{id}", h.Delete)
	route("POST /budgets/{id}/attachment", h.AttachmentUploadURL)

	// SSE events endpoint
	if events != nil {
		mux.Handle("GET /events", protect(events))
	}

	return mux
}
