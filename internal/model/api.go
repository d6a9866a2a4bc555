package model

import "time"

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Stock event types published on the live feed.
const (
	EventItemAdded    = "item_added"
	EventItemUpdated  = "item_updated"
	EventStockChanged = "stock_changed"
)

// StockEvent is a catalog change pushed to WebSocket subscribers.
type StockEvent struct {
	Type      string    `json:"type"`
	ItemName  string    `json:"item_name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStockEvent builds an event describing the current state of item.
func NewStockEvent(eventType string, item Item) StockEvent {
	return StockEvent{
		Type:      eventType,
		ItemName:  item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Timestamp: time.Now().UTC(),
	}
}
