package store

import (
	"context"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// MemoryCartStore implements CartStore with in-memory storage.
type MemoryCartStore struct {
	coll *memoryCollection
}

// NewMemoryCartStore creates a new MemoryCartStore instance.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{coll: newMemoryCollection()}
}

func toCartEntry(r record) *model.CartEntry {
	return &model.CartEntry{ID: r.id, Name: r.name, Price: r.price, Quantity: r.quantity}
}

// List returns every cart entry in insertion order.
func (s *MemoryCartStore) List(ctx context.Context) ([]model.CartEntry, error) {
	recs, err := s.coll.list(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.CartEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, *toCartEntry(r))
	}

	return entries, nil
}

// Get retrieves a cart entry by name.
func (s *MemoryCartStore) Get(ctx context.Context, name string) (*model.CartEntry, error) {
	r, err := s.coll.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// Create inserts a new cart entry.
func (s *MemoryCartStore) Create(ctx context.Context, entry *model.CartEntry) (*model.CartEntry, error) {
	if entry == nil {
		return nil, ErrNilDocument
	}

	r, err := s.coll.insert(ctx, record{name: entry.Name, price: entry.Price, quantity: entry.Quantity})
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// Replace overwrites price and quantity of an existing entry.
func (s *MemoryCartStore) Replace(ctx context.Context, name string, price float64, quantity int) (*model.CartEntry, error) {
	r, err := s.coll.modify(ctx, name, func(r *record) error {
		r.price = price
		r.quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// ReplaceIfQuantity overwrites the entry only while its quantity equals expected.
func (s *MemoryCartStore) ReplaceIfQuantity(
	ctx context.Context, name string, expected int, price float64, quantity int,
) (*model.CartEntry, error) {
	r, err := s.coll.modify(ctx, name, func(r *record) error {
		if r.quantity != expected {
			return ErrStale
		}
		r.price = price
		r.quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// Delete removes a cart entry by name.
func (s *MemoryCartStore) Delete(ctx context.Context, name string) error {
	return s.coll.remove(ctx, name)
}
