// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"strings"
)

// Validation errors for catalog items and cart entries.
var (
	ErrMissingField        = errors.New("field is required")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNameTooLong         = errors.New("name cannot exceed 255 characters")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrNegativeQuantity    = errors.New("quantity cannot be negative")
	ErrNonPositiveQuantity = errors.New("quantity must be at least 1")
)

// Validation constants.
const (
	MaxNameLength = 255
)

// Field names as they appear in persisted documents and API payloads.
const (
	FieldItemName = "item_name"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
)

// Item is a catalog entry. Name is the unique key; Quantity is the
// authoritative available stock.
type Item struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"item_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Validate checks if the Item has valid field values.
func (i *Item) Validate() error {
	var errs ValidationErrors

	errs = errs.add(FieldItemName, validateName(i.Name))

	if i.Price < 0 {
		errs = errs.add(FieldPrice, ErrNegativePrice)
	}

	if i.Quantity < 0 {
		errs = errs.add(FieldQuantity, ErrNegativeQuantity)
	}

	return errs.OrNil()
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// Unwrap returns the underlying validation error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every invalid field of a payload.
type ValidationErrors []*FieldError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes each field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Missing records a required field that was absent from a payload.
func (v ValidationErrors) Missing(field string) ValidationErrors {
	return v.add(field, ErrMissingField)
}

// Details returns a field -> message map suitable for API responses.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, fe := range v {
		details[fe.Field] = fe.Err.Error()
	}
	return details
}

func (v ValidationErrors) add(field string, err error) ValidationErrors {
	if err == nil {
		return v
	}
	return append(v, &FieldError{Field: field, Err: err})
}

// OrNil returns nil when no field errors were collected.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
