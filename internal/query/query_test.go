package query

import (
	"errors"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/vyrodovalexey/storefront/internal/model"
)

func sampleItems() []model.Item {
	return []model.Item{
		{Name: "Granny Smith Apples", Price: 7, Quantity: 20},
		{Name: "Granny Smith Aples", Price: 10, Quantity: 100},
		{Name: "Bananas", Price: 3, Quantity: 50},
		{Name: "Granny Smah Apples", Price: 7, Quantity: 50},
	}
}

func names(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

func TestParseFilterType(t *testing.T) {
	tests := []struct {
		input   string
		want    Order
		wantErr bool
	}{
		{"lowest-highest price", Order{FieldPrice, Ascending}, false},
		{"highest-lowest price", Order{FieldPrice, Descending}, false},
		{"lowest-highest quantity", Order{FieldQuantity, Ascending}, false},
		{"highest-lowest quantity", Order{FieldQuantity, Descending}, false},
		{"Lowest-Highest price", Order{}, true},
		{"cheapest", Order{}, true},
		{"", Order{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilterType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownOrder) {
					t.Errorf("ParseFilterType(%q) error = %v, want ErrUnknownOrder", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilterType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFilterType(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrder_Validate(t *testing.T) {
	if err := (Order{FieldPrice, Ascending}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (Order{Field("name"), Ascending}).Validate(); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("Validate() error = %v, want ErrUnknownOrder", err)
	}
	if err := (Order{FieldQuantity, Direction("sideways")}).Validate(); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("Validate() error = %v, want ErrUnknownOrder", err)
	}
}

func TestFilterByName(t *testing.T) {
	tests := []struct {
		name   string
		substr string
		want   []string
	}{
		{"empty matches all", "", []string{"Granny Smith Apples", "Granny Smith Aples", "Bananas", "Granny Smah Apples"}},
		{"prefix", "Granny", []string{"Granny Smith Apples", "Granny Smith Aples", "Granny Smah Apples"}},
		{"case sensitive", "granny", []string{}},
		{"inner substring", "Apples", []string{"Granny Smith Apples", "Granny Smah Apples"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterByName(sampleItems(), tt.substr))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FilterByName(%q) = %v, want %v", tt.substr, got, tt.want)
			}
		})
	}
}

func TestApply_PriceAscendingStable(t *testing.T) {
	// Act
	got, err := Apply(sampleItems(), "Granny", Order{FieldPrice, Ascending})

	// Assert
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	want := []string{"Granny Smith Apples", "Granny Smah Apples", "Granny Smith Aples"}
	if !slices.Equal(names(got), want) {
		t.Errorf("Apply() = %v, want %v", names(got), want)
	}
}

func TestApply_QuantityDescending(t *testing.T) {
	got, err := Apply(sampleItems(), "", Order{FieldQuantity, Descending})
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}

	want := []string{"Granny Smith Aples", "Granny Smah Apples", "Bananas", "Granny Smith Apples"}
	if !slices.Equal(names(got), want) {
		t.Errorf("Apply() = %v, want %v", names(got), want)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	before := names(items)

	if _, err := Apply(items, "", Order{FieldPrice, Descending}); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}

	if !slices.Equal(names(items), before) {
		t.Errorf("input mutated: %v, want %v", names(items), before)
	}
}

func TestApply_UnknownOrder(t *testing.T) {
	_, err := Apply(sampleItems(), "", Order{Field: "name", Direction: Ascending})
	if !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("Apply() error = %v, want ErrUnknownOrder", err)
	}
}

func genItems(t *rapid.T) []model.Item {
	n := rapid.IntRange(0, 30).Draw(t, "n")
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.Item{
			Name:     rapid.StringMatching(`[A-Ca-c]{1,4}`).Draw(t, "name"),
			Price:    float64(rapid.IntRange(0, 20).Draw(t, "price")),
			Quantity: rapid.IntRange(0, 20).Draw(t, "quantity"),
		})
	}
	return items
}

func TestApply_PriceAscendingIsNonDecreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genItems(t)

		got, err := Apply(items, "", Order{FieldPrice, Ascending})
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}

		if len(got) != len(items) {
			t.Fatalf("len = %d, want %d", len(got), len(items))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Price > got[i].Price {
				t.Fatalf("not sorted at %d: %v > %v", i, got[i-1].Price, got[i].Price)
			}
		}
	})
}

func TestApply_DescendingReversesAscending(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genItems(t)
		substr := rapid.StringMatching(`[A-Ca-c]{0,2}`).Draw(t, "substr")
		field := rapid.SampledFrom([]Field{FieldPrice, FieldQuantity}).Draw(t, "field")

		asc, err := Apply(items, substr, Order{field, Ascending})
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		desc, err := Apply(items, substr, Order{field, Descending})
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}

		slices.Reverse(desc)
		if !slices.Equal(asc, desc) {
			t.Fatalf("descending is not the reverse of ascending:\nasc=%v\ndesc=%v", asc, desc)
		}
	})
}
