package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/lock"
	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/store"
)

// maxCartAttempts bounds compare-and-swap retries in atomic mode.
const maxCartAttempts = 3

// OrderOptions configures the consistency behaviour of OrderService.
type OrderOptions struct {
	Consistency ConsistencyMode
	CartCheck   CartCheckMode
	CartTotal   CartTotalMode
	// Locker is used in ConsistencyLocked mode. Defaults to an in-process KeyedMutex.
	Locker    lock.Locker
	Publisher EventPublisher
}

// CartInput carries the fields of an add-to-cart request.
type CartInput struct {
	Name     string
	Price    float64
	Quantity int
}

// CartResult describes a successful cart write.
type CartResult struct {
	Entry   *model.CartEntry
	Created bool
}

// OrderService moves stock on purchase and records cart reservations.
type OrderService struct {
	items       store.ItemStore
	cart        store.CartStore
	consistency ConsistencyMode
	cartCheck   CartCheckMode
	cartTotal   CartTotalMode
	locker      lock.Locker
	publisher   EventPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService instance. Unset modes fall back to legacy.
func NewOrderService(items store.ItemStore, cart store.CartStore, logger *zap.Logger, opts OrderOptions) *OrderService {
	s := &OrderService{
		items:       items,
		cart:        cart,
		consistency: opts.Consistency,
		cartCheck:   opts.CartCheck,
		cartTotal:   opts.CartTotal,
		publisher:   opts.Publisher,
		logger:      logger,
	}

	if s.consistency == "" {
		s.consistency = ConsistencyLegacy
	}
	if s.cartCheck == "" {
		s.cartCheck = CartCheckLegacy
	}
	if s.cartTotal == "" {
		s.cartTotal = CartTotalLegacy
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}

	if s.consistency == ConsistencyLocked {
		s.locker = opts.Locker
		if s.locker == nil {
			s.locker = lock.NewKeyedMutex()
		}
	}

	return s
}

// Purchase decrements the catalog quantity of name by quantity. It is
// rejected wholesale when stock is insufficient. The cart is not involved.
func (s *OrderService) Purchase(ctx context.Context, name string, quantity int) (*model.Item, error) {
	item, err := s.purchase(ctx, name, quantity)
	purchasesTotal.WithLabelValues(resultLabel(err)).Inc()

	switch {
	case err == nil:
		s.logger.Info("item purchased",
			zap.String("item_name", name),
			zap.Int("quantity", quantity),
			zap.Int("remaining", item.Quantity),
		)
		s.publisher.Publish(model.NewStockEvent(model.EventStockChanged, *item))
	case errors.Is(err, ErrInsufficientStock):
		s.logger.Warn("purchase exceeds stock",
			zap.String("item_name", name),
			zap.Int("quantity", quantity),
		)
	case !IsBusinessError(err):
		s.logger.Error("purchase failed", zap.String("item_name", name), zap.Error(err))
	}

	return item, err
}

func (s *OrderService) purchase(ctx context.Context, name string, quantity int) (*model.Item, error) {
	if quantity < 1 {
		verr := model.ValidationErrors{{Field: model.FieldQuantity, Err: model.ErrNonPositiveQuantity}}
		return nil, fmt.Errorf("purchase: %w", InvalidInput(verr))
	}

	if s.consistency == ConsistencyAtomic {
		item, err := s.items.DecrementQuantity(ctx, name, quantity)
		return item, translate("purchase", name, err)
	}

	var item *model.Item
	err := withLock(ctx, s.locker, name, func() error {
		var err error
		item, err = s.decrementAfterRead(ctx, name, quantity)
		return err
	})
	if err != nil {
		return nil, translate("purchase", name, err)
	}
	return item, nil
}

// decrementAfterRead is the read-check-write sequence. Without a lock held
// two callers may both pass the check before either writes.
func (s *OrderService) decrementAfterRead(ctx context.Context, name string, quantity int) (*model.Item, error) {
	item, err := s.items.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	remaining := item.Quantity - quantity
	if remaining < 0 {
		return nil, store.ErrInsufficientQuantity
	}

	return s.items.SetQuantity(ctx, name, remaining)
}

// AddToCart records a reservation intent for an existing catalog item. A
// later call for the same name overwrites price and quantity. Catalog stock
// is never changed.
func (s *OrderService) AddToCart(ctx context.Context, in CartInput) (*CartResult, error) {
	res, err := s.addToCart(ctx, in)
	cartWritesTotal.WithLabelValues(resultLabel(err)).Inc()

	switch {
	case err == nil:
		s.logger.Info("cart updated",
			zap.String("item_name", in.Name),
			zap.Int("quantity", in.Quantity),
			zap.Bool("created", res.Created),
		)
	case errors.Is(err, ErrInsufficientStock):
		s.logger.Warn("cart quantity exceeds stock",
			zap.String("item_name", in.Name),
			zap.Int("quantity", in.Quantity),
		)
	case !IsBusinessError(err):
		s.logger.Error("add to cart failed", zap.String("item_name", in.Name), zap.Error(err))
	}

	return res, err
}

func (s *OrderService) addToCart(ctx context.Context, in CartInput) (*CartResult, error) {
	entry := model.CartEntry{Name: in.Name, Price: in.Price, Quantity: in.Quantity}
	if err := entry.Validate(); err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) && onlyEmptyName(verrs) {
			// An empty name cannot reference a catalog item.
			return nil, fmt.Errorf("add to cart %q: %w", in.Name, ErrNotFound)
		}
		return nil, fmt.Errorf("add to cart: %w", InvalidInput(err))
	}

	attempts := 1
	if s.consistency == ConsistencyAtomic {
		attempts = maxCartAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		var res *CartResult
		err := withLock(ctx, s.locker, in.Name, func() error {
			var err error
			res, err = s.writeCart(ctx, in)
			return err
		})
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, store.ErrStale) && !errors.Is(err, store.ErrAlreadyExists) {
			return nil, translate("add to cart", in.Name, err)
		}

		lastErr = err
		if attempt+1 < attempts {
			cartRetriesTotal.Inc()
		}
	}

	return nil, translate("add to cart", in.Name, lastErr)
}

// writeCart performs one read-check-write pass over the catalog and cart.
func (s *OrderService) writeCart(ctx context.Context, in CartInput) (*CartResult, error) {
	item, err := s.items.Get(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	s.flagStalePrice(item, in.Price)

	existing, err := s.cart.Get(ctx, in.Name)
	if errors.Is(err, store.ErrNotFound) {
		if in.Quantity > item.Quantity {
			return nil, store.ErrInsufficientQuantity
		}

		created, err := s.cart.Create(ctx, &model.CartEntry{Name: in.Name, Price: in.Price, Quantity: in.Quantity})
		if err != nil {
			return nil, err
		}
		return &CartResult{Entry: created, Created: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if !s.cartHasRoom(item.Quantity, existing.Quantity, in.Quantity) {
		return nil, store.ErrInsufficientQuantity
	}

	var updated *model.CartEntry
	if s.consistency == ConsistencyAtomic {
		updated, err = s.cart.ReplaceIfQuantity(ctx, in.Name, existing.Quantity, in.Price, in.Quantity)
	} else {
		updated, err = s.cart.Replace(ctx, in.Name, in.Price, in.Quantity)
	}
	if err != nil {
		return nil, err
	}

	return &CartResult{Entry: updated}, nil
}

// cartHasRoom applies the configured check for an existing cart entry.
// The legacy check looks at the previous cart quantity, not the requested one.
func (s *OrderService) cartHasRoom(stock, previous, requested int) bool {
	if s.cartCheck == CartCheckStrict {
		return requested <= stock
	}
	return stock-previous >= 0
}

// flagStalePrice reports a caller price that differs from the catalog price.
// The supplied price is still stored.
func (s *OrderService) flagStalePrice(item *model.Item, price float64) {
	if item.Price == price {
		return
	}

	cartPriceMismatchTotal.Inc()
	s.logger.Warn("cart price differs from catalog price",
		zap.String("item_name", item.Name),
		zap.Float64("catalog_price", item.Price),
		zap.Float64("cart_price", price),
	)
}

// CartTotal returns every cart entry and the total. In legacy mode the total
// is the sum of the stored prices without regard to quantity.
func (s *OrderService) CartTotal(ctx context.Context) (*model.CartSummary, error) {
	entries, err := s.cart.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	var total float64
	for i := range entries {
		if s.cartTotal == CartTotalCorrected {
			total += entries[i].LineTotal()
		} else {
			total += entries[i].Price
		}
	}

	return &model.CartSummary{Entries: entries, Total: total}, nil
}

// RemoveFromCart deletes the cart entry for name.
func (s *OrderService) RemoveFromCart(ctx context.Context, name string) error {
	if err := s.cart.Delete(ctx, name); err != nil {
		return translate("remove from cart", name, err)
	}

	s.logger.Info("cart entry removed", zap.String("item_name", name))
	return nil
}

func onlyEmptyName(verrs model.ValidationErrors) bool {
	return len(verrs) == 1 && errors.Is(verrs[0], model.ErrEmptyName)
}
