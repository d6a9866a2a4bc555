package service

import (
	"context"

	"github.com/vyrodovalexey/storefront/internal/lock"
	"github.com/vyrodovalexey/storefront/internal/model"
)

// ConsistencyMode selects how stock checks and writes are combined.
type ConsistencyMode string

// Consistency modes.
const (
	// ConsistencyLegacy reads, checks and writes as separate steps.
	// Concurrent purchases of the same item can oversell.
	ConsistencyLegacy ConsistencyMode = "legacy"
	// ConsistencyAtomic pushes the check into a conditional store update.
	ConsistencyAtomic ConsistencyMode = "atomic"
	// ConsistencyLocked holds a per-item lock across the read-check-write sequence.
	ConsistencyLocked ConsistencyMode = "locked"
)

// CartCheckMode selects the stock comparison used when a cart entry already exists.
type CartCheckMode string

// Cart check modes.
const (
	// CartCheckLegacy compares catalog stock against the previous cart quantity.
	CartCheckLegacy CartCheckMode = "legacy"
	// CartCheckStrict compares catalog stock against the newly requested quantity.
	CartCheckStrict CartCheckMode = "strict"
)

// CartTotalMode selects how the checkout total is computed.
type CartTotalMode string

// Cart total modes.
const (
	// CartTotalLegacy sums the stored price of each entry, ignoring quantity.
	CartTotalLegacy CartTotalMode = "legacy"
	// CartTotalCorrected sums price multiplied by quantity.
	CartTotalCorrected CartTotalMode = "corrected"
)

// EventPublisher receives catalog changes.
type EventPublisher interface {
	Publish(event model.StockEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.StockEvent) {}

func itemLockKey(name string) string {
	return "item:" + name
}

// withLock runs fn while holding the item lock. A nil locker runs fn directly.
func withLock(ctx context.Context, locker lock.Locker, name string, fn func() error) error {
	if locker == nil {
		return fn()
	}

	unlock, err := locker.Lock(ctx, itemLockKey(name))
	if err != nil {
		return err
	}
	defer unlock()

	return fn()
}
