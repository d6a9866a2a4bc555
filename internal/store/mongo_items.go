package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// MongoItemStore implements ItemStore on the registered_items collection.
type MongoItemStore struct {
	coll *mongoCollection
}

// List returns every item in insertion order.
func (s *MongoItemStore) List(ctx context.Context) ([]model.Item, error) {
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
func (s *MongoItemStore) Get(ctx context.Context, name string) (*model.Item, error) {
	r, err := s.coll.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// Create inserts a new item; the unique index rejects duplicates.
func (s *MongoItemStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
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
func (s *MongoItemStore) Update(ctx context.Context, name string, price float64, quantity int) (*model.Item, error) {
	r, err := s.coll.update(ctx, name, nil, setFields(price, quantity), nil)
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// SetQuantity overwrites the quantity of an existing item.
func (s *MongoItemStore) SetQuantity(ctx context.Context, name string, quantity int) (*model.Item, error) {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "quantity", Value: quantity}}}}

	r, err := s.coll.update(ctx, name, nil, update, nil)
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}

// DecrementQuantity runs a conditional $inc matching only when quantity >= by.
func (s *MongoItemStore) DecrementQuantity(ctx context.Context, name string, by int) (*model.Item, error) {
	if by < 1 {
		return nil, ErrInvalidQuantity
	}

	cond := bson.D{{Key: "quantity", Value: bson.D{{Key: "$gte", Value: by}}}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -by}}}}

	r, err := s.coll.update(ctx, name, cond, update, ErrInsufficientQuantity)
	if err != nil {
		return nil, err
	}
	return toItem(r), nil
}
