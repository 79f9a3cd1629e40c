// Package service holds the budget tracker's business rules.
//
// BudgetService sits between the HTTP handlers and a repository.Repository.
// It is the authorization boundary: update, delete and attachment requests
// load the item first and are rejected with domain.ErrForbidden unless the
// caller owns it. Reads and creates pass straight through.
//
// Mutations publish an Event on the EventBus so connected clients can be
// told about changes over Server-Sent Events. Events carry the owning user
// so the hub can deliver them to that user only.
package service
