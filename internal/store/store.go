// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// Collection names used by persistent backends.
const (
	ItemsCollection = "registered_items"
	CartCollection  = "checked_items"
)

// Store errors.
var (
	ErrNotFound             = errors.New("document not found")
	ErrAlreadyExists        = errors.New("document already exists")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrStale                = errors.New("document changed since it was read")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrNilDocument          = errors.New("document cannot be nil")
)

// ItemStore defines the catalog storage operations. Items are keyed by name.
type ItemStore interface {
	// List returns every item in store order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by name.
	Get(ctx context.Context, name string) (*model.Item, error)

	// Create inserts a new item. It returns ErrAlreadyExists if the name is taken.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// Update replaces price and quantity of an existing item.
	Update(ctx context.Context, name string, price float64, quantity int) (*model.Item, error)

	// SetQuantity overwrites the quantity of an existing item unconditionally.
	SetQuantity(ctx context.Context, name string, quantity int) (*model.Item, error)

	// DecrementQuantity subtracts by from the quantity in a single atomic step,
	// only when the current quantity is at least by. Otherwise it returns
	// ErrInsufficientQuantity and leaves the item unchanged.
	DecrementQuantity(ctx context.Context, name string, by int) (*model.Item, error)
}

// CartStore defines the cart storage operations. Entries are keyed by name.
type CartStore interface {
	// List returns every cart entry in store order.
	List(ctx context.Context) ([]model.CartEntry, error)

	// Get retrieves a cart entry by name.
	Get(ctx context.Context, name string) (*model.CartEntry, error)

	// Create inserts a new entry. It returns ErrAlreadyExists if the name is taken.
	Create(ctx context.Context, entry *model.CartEntry) (*model.CartEntry, error)

	// Replace overwrites price and quantity of an existing entry.
	Replace(ctx context.Context, name string, price float64, quantity int) (*model.CartEntry, error)

	// ReplaceIfQuantity overwrites price and quantity only while the stored
	// quantity still equals expected. Otherwise it returns ErrStale.
	ReplaceIfQuantity(ctx context.Context, name string, expected int, price float64, quantity int) (*model.CartEntry, error)

	// Delete removes a cart entry by name.
	Delete(ctx context.Context, name string) error
}

// Pinger is implemented by backends that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
