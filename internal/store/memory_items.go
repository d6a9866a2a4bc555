package store

import (
	"context"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// MemoryItemStore implements ItemStore with in-memory storage.
type MemoryItemStore struct {
	coll *memoryCollection
}

// NewMemoryItemStore creates a new MemoryItemStore instance.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{coll: newMemoryCollection()}
}

func toItem(r record) *model.Item {
	return &model.Item{ID: r.id, Name: r.name, Price: r.price, Quantity: r.quantity}
}

// List returns every item in insertion order.
func (s *MemoryItemStore) List(ctx context.Context) ([]model.Item, error) {
	recs, err := s.coll.list(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, *toItem(r))
	}

	return items, nil
}

// Get retrieves an item by name.
func (s *MemoryItemStore) Get(ctx context.Context, name string) (*model.Item, error) {
	r, err := s.coll.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// Create inserts a new item.
func (s *MemoryItemStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	if item == nil {
		return nil, ErrNilDocument
	}

	r, err := s.coll.insert(ctx, record{name: item.Name, price: item.Price, quantity: item.Quantity})
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// Update replaces price and quantity of an existing item.
func (s *MemoryItemStore) Update(ctx context.Context, name string, price float64, quantity int) (*model.Item, error) {
	r, err := s.coll.modify(ctx, name, func(r *record) error {
		r.price = price
		r.quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// SetQuantity overwrites the quantity of an existing item.
func (s *MemoryItemStore) SetQuantity(ctx context.Context, name string, quantity int) (*model.Item, error) {
	r, err := s.coll.modify(ctx, name, func(r *record) error {
		r.quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// DecrementQuantity subtracts by from the item quantity if enough is available.
func (s *MemoryItemStore) DecrementQuantity(ctx context.Context, name string, by int) (*model.Item, error) {
	if by < 1 {
		return nil, ErrInvalidQuantity
	}

	r, err := s.coll.modify(ctx, name, func(r *record) error {
		if r.quantity < by {
			return ErrInsufficientQuantity
		}
		r.quantity -= by
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryItemStore) Ping(ctx context.Context) error {
	return checkContext(ctx, "ping")
}
