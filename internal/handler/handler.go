// Package handler provides HTTP request handlers for the storefront API.
package handler

import (
	"context"

	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/query"
	"github.com/vyrodovalexey/storefront/internal/service"
)

// Version is the application version.
const Version = "1.0.0"

// ResponseMode selects how outcomes are reported to HTTP clients.
type ResponseMode string

// Response modes.
const (
	// ResponseLegacy answers every business outcome with HTTP 200 and a literal text body.
	ResponseLegacy ResponseMode = "legacy"
	// ResponseStatus answers with JSON bodies and meaningful status codes.
	ResponseStatus ResponseMode = "status"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// MessageResponse carries a confirmation without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// Catalog is the catalog behaviour used by the HTTP layer.
type Catalog interface {
	AddItem(ctx context.Context, in service.ItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, in service.ItemInput) (*model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)
	ListFiltered(ctx context.Context, order query.Order, nameSubstring string) ([]model.Item, error)
}

// Orders is the purchase and cart behaviour used by the HTTP layer.
type Orders interface {
	Purchase(ctx context.Context, name string, quantity int) (*model.Item, error)
	AddToCart(ctx context.Context, in service.CartInput) (*service.CartResult, error)
	CartTotal(ctx context.Context) (*model.CartSummary, error)
	RemoveFromCart(ctx context.Context, name string) error
}
