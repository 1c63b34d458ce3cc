package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDuplicateMessage is returned when a lead with the same
	// whatsapp_message_id already exists.
	ErrDuplicateMessage = errors.New("duplicate whatsapp message id")

	// ErrInvalidPhone is returned when the customer phone is not a 10-digit number
	ErrInvalidPhone = errors.New("customer phone must be 10 digits")

	// ErrMissingServiceType is returned when the service type is empty
	ErrMissingServiceType = errors.New("service type is required")

	// ErrInvalidStatus is returned on an empty or unknown status
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrMissingCreator is returned when no creating user is attributed
	ErrMissingCreator = errors.New("created_by_user_id is required")

	// ErrInvalidTransition is returned when a status change violates the
	// lifecycle ordering.
	ErrInvalidTransition = errors.New("illegal status transition")
)
