package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item id is unknown to the nutrition table or the day's items
	ErrNotFound = errors.New("item not found")

	// ErrValidation is returned when a new item request is rejected before any state change
	ErrValidation = errors.New("invalid item request")

	// ErrPersist is returned when a storage write fails; the in-memory change is kept
	ErrPersist = errors.New("failed to persist state")

	// ErrParse is returned when a persisted record cannot be decoded
	ErrParse = errors.New("corrupted persisted data")

	// ErrUnknownCategory is returned for a meal category outside breakfast/lunch/dinner/dessert
	ErrUnknownCategory = errors.New("unknown meal category")

	// ErrKeyNotFound is returned by key-value stores when a key has never been written
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by size-limited stores when a write would not fit
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// ValidationError describes a single rejected field of a NewItemRequest.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
