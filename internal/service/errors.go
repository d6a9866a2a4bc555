// Package service implements the catalog and order rules on top of the stores.
package service

import (
	"errors"
	"fmt"

	"github.com/vyrodovalexey/storefront/internal/store"
)

// Error taxonomy reported to callers.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InvalidInput wraps a validation failure so that it matches ErrInvalidInput
// while keeping the field-level cause reachable through errors.As.
func InvalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// translate maps store and lock errors into the service taxonomy.
func translate(op, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s %q: %w", op, name, ErrNotFound)
	case errors.Is(err, store.ErrInsufficientQuantity):
		return fmt.Errorf("%s %q: %w", op, name, ErrInsufficientStock)
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrStale):
		return fmt.Errorf("%s %q: %w", op, name, ErrConflict)
	default:
		return fmt.Errorf("%s %q: %w", op, name, err)
	}
}

// IsBusinessError reports whether err belongs to the taxonomy rather than
// being an infrastructure failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock)
}
