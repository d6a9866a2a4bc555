package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Request field names.
const (
	fieldItem         = "item"
	fieldItemName     = "item_name"
	fieldItemPrice    = "item_price"
	fieldPrice        = "price"
	fieldQuantity     = "quantity"
	fieldUID          = "uID"
	fieldFilterType   = "filter_type"
	fieldProvidedName = "provided_name"
)

type validator interface {
	validate() error
}

// callerID accepts any JSON value for uID. Only a string can match the
// admin identity, so other values decode to the empty id and fail authorization.
type callerID string

func (c *callerID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*c = ""
		return nil
	}
	*c = callerID(s)
	return nil
}

type itemRequest struct {
	Item     *string   `json:"item"`
	Price    *float64  `json:"price"`
	Quantity *int      `json:"quantity"`
	UID      *callerID `json:"uID"`
}

func (r *itemRequest) validate() error {
	var errs model.ValidationErrors
	if r.Item == nil {
		errs = errs.Missing(fieldItem)
	}
	if r.Price == nil {
		errs = errs.Missing(fieldPrice)
	}
	if r.Quantity == nil {
		errs = errs.Missing(fieldQuantity)
	}
	if r.UID == nil {
		errs = errs.Missing(fieldUID)
	}
	return errs.OrNil()
}

func (r *itemRequest) input() service.ItemInput {
	return service.ItemInput{
		Name:     *r.Item,
		Price:    *r.Price,
		Quantity: *r.Quantity,
		CallerID: string(*r.UID),
	}
}

type fetchRequest struct {
	FilterType   *string `json:"filter_type"`
	ProvidedName *string `json:"provided_name"`
}

func (r *fetchRequest) validate() error {
	var errs model.ValidationErrors
	if r.FilterType == nil {
		errs = errs.Missing(fieldFilterType)
	}
	if r.ProvidedName == nil {
		errs = errs.Missing(fieldProvidedName)
	}
	return errs.OrNil()
}

type purchaseRequest struct {
	ItemName *string `json:"item_name"`
	Quantity *int    `json:"quantity"`
}

func (r *purchaseRequest) validate() error {
	var errs model.ValidationErrors
	if r.ItemName == nil {
		errs = errs.Missing(fieldItemName)
	}
	if r.Quantity == nil {
		errs = errs.Missing(fieldQuantity)
	}
	return errs.OrNil()
}

type cartRequest struct {
	ItemName  *string  `json:"item_name"`
	ItemPrice *float64 `json:"item_price"`
	Quantity  *int     `json:"quantity"`
}

func (r *cartRequest) validate() error {
	var errs model.ValidationErrors
	if r.ItemName == nil {
		errs = errs.Missing(fieldItemName)
	}
	if r.ItemPrice == nil {
		errs = errs.Missing(fieldItemPrice)
	}
	if r.Quantity == nil {
		errs = errs.Missing(fieldQuantity)
	}
	return errs.OrNil()
}

func (r *cartRequest) input() service.CartInput {
	return service.CartInput{
		Name:     *r.ItemName,
		Price:    *r.ItemPrice,
		Quantity: *r.Quantity,
	}
}

type removeRequest struct {
	ItemName *string `json:"item_name"`
}

func (r *removeRequest) validate() error {
	var errs model.ValidationErrors
	if r.ItemName == nil {
		errs = errs.Missing(fieldItemName)
	}
	return errs.OrNil()
}

// decodeRequest reads a JSON body into dst and checks required fields.
// Malformed bodies and type mismatches are reported as invalid input.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst validator) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.InvalidInput(fmt.Errorf("decode request body: %w", err))
	}

	if err := dst.validate(); err != nil {
		return service.InvalidInput(err)
	}

	return nil
}
