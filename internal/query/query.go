// Package query implements catalog filtering and ordering.
package query

import (
	"errors"
	"slices"
	"strings"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// ErrUnknownOrder is returned for a sort field/direction pair that is not recognized.
var ErrUnknownOrder = errors.New("unknown sort order")

// Field is the item attribute used as the sort key.
type Field string

// Sort fields.
const (
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
)

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Order is a sort key and direction.
type Order struct {
	Field     Field
	Direction Direction
}

// filterTypes maps the public filter_type literals to orders.
var filterTypes = map[string]Order{
	"lowest-highest price":    {Field: FieldPrice, Direction: Ascending},
	"highest-lowest price":    {Field: FieldPrice, Direction: Descending},
	"lowest-highest quantity": {Field: FieldQuantity, Direction: Ascending},
	"highest-lowest quantity": {Field: FieldQuantity, Direction: Descending},
}

// ParseFilterType converts a filter_type literal such as "lowest-highest price" into an Order.
func ParseFilterType(s string) (Order, error) {
	order, ok := filterTypes[s]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	return order, nil
}

// Validate reports whether o is one of the four recognized orders.
func (o Order) Validate() error {
	switch o.Field {
	case FieldPrice, FieldQuantity:
	default:
		return ErrUnknownOrder
	}

	switch o.Direction {
	case Ascending, Descending:
	default:
		return ErrUnknownOrder
	}

	return nil
}

// FilterByName returns the items whose name contains substr. Matching is
// case-sensitive and an empty substr matches everything. Input order is kept.
func FilterByName(items []model.Item, substr string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(item.Name, substr) {
			out = append(out, item)
		}
	}
	return out
}

// Apply filters items by name and sorts the result by o.
// Ascending order is stable on input order; descending order is the exact
// reverse of the ascending result. The input slice is not modified.
func Apply(items []model.Item, substr string, o Order) ([]model.Item, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	out := FilterByName(items, substr)

	key := sortKey(o.Field)
	slices.SortStableFunc(out, func(a, b model.Item) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})

	if o.Direction == Descending {
		slices.Reverse(out)
	}

	return out, nil
}

func sortKey(f Field) func(model.Item) float64 {
	if f == FieldQuantity {
		return func(i model.Item) float64 { return float64(i.Quantity) }
	}
	return func(i model.Item) float64 { return i.Price }
}
