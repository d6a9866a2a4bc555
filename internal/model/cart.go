package model

// CartEntry is a reservation intent for a catalog item. Price is the
// caller-supplied snapshot and may differ from the catalog price.
type CartEntry struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"item_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Validate checks if the CartEntry has valid field values.
func (c *CartEntry) Validate() error {
	var errs ValidationErrors

	errs = errs.add(FieldItemName, validateName(c.Name))

	if c.Price < 0 {
		errs = errs.add(FieldPrice, ErrNegativePrice)
	}

	if c.Quantity < 1 {
		errs = errs.add(FieldQuantity, ErrNonPositiveQuantity)
	}

	return errs.OrNil()
}

// LineTotal returns price multiplied by quantity.
func (c *CartEntry) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

// CartSummary is the cart contents together with the computed total.
type CartSummary struct {
	Entries []CartEntry `json:"entries"`
	Total   float64     `json:"total"`
}
