package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain metrics.
var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_purchases_total",
			Help: "Purchase attempts by result",
		},
		[]string{"result"},
	)

	cartWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_cart_writes_total",
			Help: "Add-to-cart attempts by result",
		},
		[]string{"result"},
	)

	cartPriceMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cart_price_mismatch_total",
			Help: "Cart writes whose supplied price differs from the catalog price",
		},
	)

	cartRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cart_cas_retries_total",
			Help: "Cart writes retried after a concurrent modification",
		},
	)
)

// resultLabel classifies an operation outcome for metric labels.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
