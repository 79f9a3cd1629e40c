package domain

import "errors"

// Error taxonomy shared by the gateway, service and handler layers.
// Layers wrap these with fmt.Errorf("...: %w") and callers test with errors.Is.
var (
	// ErrInvalidArgument is a missing or malformed identifier or payload
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means no item exists at the requested identifier
	ErrNotFound = errors.New("budget item not found")
	// ErrForbidden is an owner mismatch on a mutating operation
	ErrForbidden = errors.New("forbidden")
	// ErrUpdateFailed is a store fault during a field-scoped update
	ErrUpdateFailed = errors.New("unable to update budget item")
	// ErrStorageUnavailable is any other store fault
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrAttachmentsDisabled means no upload URL generator is configured
	ErrAttachmentsDisabled = errors.New("attachments not configured")
)
