// Package handler implements the HTTP API of the budget tracker.
//
// BudgetHandler maps requests onto service.BudgetService. Every route except
// /healthz sits behind bearer token authentication; the caller's identity is
// read from the request context, never from the body.
//
// # Response Format
//
// Success responses wrap data as {"item": ...}, {"items": [...]} or
// {"uploadUrl": ...}. Errors return {error, details} with a status chosen by
// StatusFor from the error's sentinel:
//
//	invalid argument        400
//	unauthenticated         401
//	forbidden               403
//	not found               404
//	storage or attachments  503
//	anything else           500
//
// # Middleware
//
// Recover, CORS and Logger are applied with Chain. CORS origins live in a
// CORSPolicy that can be swapped while the server runs.
package handler
