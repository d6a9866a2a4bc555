package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// MongoCartStore implements CartStore on the checked_items collection.
type MongoCartStore struct {
	coll *mongoCollection
}

// List returns every cart entry in insertion order.
func (s *MongoCartStore) List(ctx context.Context) ([]model.CartEntry, error) {
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
func (s *MongoCartStore) Get(ctx context.Context, name string) (*model.CartEntry, error) {
	r, err := s.coll.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// Create inserts a new cart entry.
func (s *MongoCartStore) Create(ctx context.Context, entry *model.CartEntry) (*model.CartEntry, error) {
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
func (s *MongoCartStore) Replace(ctx context.Context, name string, price float64, quantity int) (*model.CartEntry, error) {
	r, err := s.coll.update(ctx, name, nil, setFields(price, quantity), nil)
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// ReplaceIfQuantity is a compare-and-swap keyed on the previously observed quantity.
func (s *MongoCartStore) ReplaceIfQuantity(
	ctx context.Context, name string, expected int, price float64, quantity int,
) (*model.CartEntry, error) {
	cond := bson.D{{Key: "quantity", Value: expected}}

	r, err := s.coll.update(ctx, name, cond, setFields(price, quantity), ErrStale)
	if err != nil {
		return nil, err
	}
	return toCartEntry(r), nil
}

// Delete removes a cart entry by name.
func (s *MongoCartStore) Delete(ctx context.Context, name string) error {
	return s.coll.remove(ctx, name)
}
