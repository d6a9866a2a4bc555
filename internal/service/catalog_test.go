package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/vyrodovalexey/storefront/internal/auth"
	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/query"
	"github.com/vyrodovalexey/storefront/internal/store"
)

func TestCatalogService_AddItem(t *testing.T) {
	tests := []struct {
		name    string
		input   ItemInput
		wantErr []error
	}{
		{
			name:  "admin adds item",
			input: ItemInput{Name: "Widget", Price: 10, Quantity: 5, CallerID: adminID},
		},
		{
			name:    "wrong caller",
			input:   ItemInput{Name: "Widget", Price: 10, Quantity: 5, CallerID: "42"},
			wantErr: []error{ErrUnauthorized, auth.ErrNotAdmin},
		},
		{
			name:    "authorization is checked before the name",
			input:   ItemInput{Name: "", Price: 10, Quantity: 5, CallerID: "42"},
			wantErr: []error{ErrUnauthorized},
		},
		{
			name:    "empty name",
			input:   ItemInput{Name: "", Price: 10, Quantity: 5, CallerID: adminID},
			wantErr: []error{ErrInvalidInput, model.ErrEmptyName},
		},
		{
			name:    "negative price",
			input:   ItemInput{Name: "Widget", Price: -1, Quantity: 5, CallerID: adminID},
			wantErr: []error{ErrInvalidInput, model.ErrNegativePrice},
		},
		{
			name:    "negative quantity",
			input:   ItemInput{Name: "Widget", Price: 1, Quantity: -5, CallerID: adminID},
			wantErr: []error{ErrInvalidInput, model.ErrNegativeQuantity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, OrderOptions{})

			// Act
			item, err := f.catalog.AddItem(context.Background(), tt.input)

			// Assert
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Name, item.Name)
				assert.Equal(t, tt.input.Quantity, f.quantity(t, tt.input.Name))
				assert.Equal(t, []string{model.EventItemAdded}, f.publisher.types())
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			items, _ := f.items.List(context.Background())
			assert.Empty(t, items)
			assert.Empty(t, f.publisher.types())
		})
	}
}

// Scenario A.
func TestCatalogService_AddItem_DuplicateNameConflicts(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()

	_, err := f.catalog.AddItem(ctx, ItemInput{Name: "Widget", Price: 10, Quantity: 5, CallerID: adminID})
	require.NoError(t, err)

	_, err = f.catalog.AddItem(ctx, ItemInput{Name: "Widget", Price: 99, Quantity: 1, CallerID: adminID})
	require.ErrorIs(t, err, ErrConflict)

	item, err := f.items.Get(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 10.0, item.Price)
	assert.Equal(t, 5, item.Quantity)
}

// P1: the catalog never holds two items with the same name.
func TestCatalogService_AddItem_NamesStayUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt, OrderOptions{})
		ctx := context.Background()
		seen := map[string]bool{}

		names := rapid.SliceOfN(rapid.SampledFrom([]string{"A", "B", "C", "D"}), 1, 20).Draw(rt, "names")
		for _, name := range names {
			_, err := f.catalog.AddItem(ctx, ItemInput{Name: name, Price: 1, Quantity: 1, CallerID: adminID})
			if seen[name] {
				if !errors.Is(err, ErrConflict) {
					rt.Fatalf("repeat add of %q: error = %v, want ErrConflict", name, err)
				}
				continue
			}
			if err != nil {
				rt.Fatalf("first add of %q: unexpected error %v", name, err)
			}
			seen[name] = true
		}

		items, err := f.catalog.ListAll(ctx)
		if err != nil {
			rt.Fatalf("ListAll() unexpected error: %v", err)
		}
		if len(items) != len(seen) {
			rt.Fatalf("len(items) = %d, want %d", len(items), len(seen))
		}
		counts := map[string]int{}
		for _, item := range items {
			counts[item.Name]++
			if counts[item.Name] > 1 {
				rt.Fatalf("duplicate item %q", item.Name)
			}
		}
	})
}

func TestCatalogService_UpdateItem(t *testing.T) {
	tests := []struct {
		name    string
		input   ItemInput
		wantErr error
	}{
		{"admin updates", ItemInput{Name: "Widget", Price: 12, Quantity: 9, CallerID: adminID}, nil},
		{"missing item", ItemInput{Name: "Gadget", Price: 12, Quantity: 9, CallerID: adminID}, ErrNotFound},
		{"wrong caller", ItemInput{Name: "Widget", Price: 12, Quantity: 9, CallerID: "nobody"}, ErrUnauthorized},
		{"empty name", ItemInput{Name: "", Price: 12, Quantity: 9, CallerID: adminID}, ErrInvalidInput},
		{"negative quantity", ItemInput{Name: "Widget", Price: 12, Quantity: -1, CallerID: adminID}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, OrderOptions{})
			f.addItem(t, "Widget", 10, 5)

			// Act
			updated, err := f.catalog.UpdateItem(context.Background(), tt.input)

			// Assert
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 5, f.quantity(t, "Widget"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 12.0, updated.Price)
			assert.Equal(t, 9, updated.Quantity)
			assert.Equal(t, []string{model.EventItemAdded, model.EventItemUpdated}, f.publisher.types())
		})
	}
}

func TestCatalogService_UpdateItem_LeavesCartEntriesAlone(t *testing.T) {
	// Arrange
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	f.addItem(t, "Widget", 10, 5)
	_, err := f.orders.AddToCart(ctx, CartInput{Name: "Widget", Price: 10, Quantity: 4})
	require.NoError(t, err)

	// Act
	_, err = f.catalog.UpdateItem(ctx, ItemInput{Name: "Widget", Price: 20, Quantity: 1, CallerID: adminID})
	require.NoError(t, err)

	// Assert
	entry, err := f.cart.Get(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 10.0, entry.Price)
	assert.Equal(t, 4, entry.Quantity, "cart drifts from catalog after update")
}

func TestCatalogService_UpdateItem_WithLocker(t *testing.T) {
	admin, _ := auth.NewStaticAdmin(adminID)
	items := store.NewMemoryItemStore()
	locker := newCountingLocker()
	catalog := NewCatalogService(items, admin, zap.NewNop(), CatalogOptions{Locker: locker})
	ctx := context.Background()

	_, err := catalog.AddItem(ctx, ItemInput{Name: "Widget", Price: 1, Quantity: 1, CallerID: adminID})
	require.NoError(t, err)
	_, err = catalog.UpdateItem(ctx, ItemInput{Name: "Widget", Price: 2, Quantity: 2, CallerID: adminID})
	require.NoError(t, err)

	assert.Equal(t, []string{"item:Widget"}, locker.keys())
}

// P4: listing twice without writes yields the same items.
func TestCatalogService_ListAll_Idempotent(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.addItem(t, fmt.Sprintf("item-%d", i), float64(i), i)
	}

	first, err := f.catalog.ListAll(ctx)
	require.NoError(t, err)
	second, err := f.catalog.ListAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
}

func TestCatalogService_ListFiltered(t *testing.T) {
	// Arrange
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	f.addItem(t, "Granny Smith Apples", 7, 20)
	f.addItem(t, "Granny Smith Aples", 10, 100)
	f.addItem(t, "Bananas", 3, 50)
	f.addItem(t, "Granny Smah Apples", 7, 50)

	// Act
	asc, err := f.catalog.ListFiltered(ctx, query.Order{Field: query.FieldPrice, Direction: query.Ascending}, "")
	require.NoError(t, err)
	desc, err := f.catalog.ListFiltered(ctx, query.Order{Field: query.FieldPrice, Direction: query.Descending}, "")
	require.NoError(t, err)
	granny, err := f.catalog.ListFiltered(ctx, query.Order{Field: query.FieldQuantity, Direction: query.Descending}, "Granny")
	require.NoError(t, err)

	// Assert
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Price, asc[i].Price)
	}
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
	require.Len(t, granny, 3)
	assert.Equal(t, "Granny Smith Aples", granny[0].Name)
}

func TestCatalogService_ListFiltered_InvalidOrder(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	_, err := f.catalog.ListFiltered(context.Background(), query.Order{Field: "name", Direction: query.Ascending}, "")

	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, query.ErrUnknownOrder)
}

func TestCatalogService_StoreFailure(t *testing.T) {
	admin, _ := auth.NewStaticAdmin(adminID)
	boom := errors.New("connection reset")
	items := &failingItemStore{MemoryItemStore: store.NewMemoryItemStore(), err: boom}
	catalog := NewCatalogService(items, admin, zap.NewNop(), CatalogOptions{})

	_, err := catalog.ListAll(context.Background())

	require.ErrorIs(t, err, boom)
	require.False(t, IsBusinessError(err))
}
