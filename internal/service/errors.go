package service

import "errors"

// Common service errors
var (
	// ErrProjectNotFound is returned when a project does not exist or belongs to another user
	ErrProjectNotFound = errors.New("project not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNegativeAmount is returned when a monetary amount is below zero
	ErrNegativeAmount = errors.New("amounts must not be negative")

	// ErrAmountPaidExceedsTotal is returned when the paid amount is larger than the total cost
	ErrAmountPaidExceedsTotal = errors.New("amount paid cannot exceed total cost")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")
)
