package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/auth"
	"github.com/vyrodovalexey/storefront/internal/lock"
	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/query"
	"github.com/vyrodovalexey/storefront/internal/store"
)

// ItemInput carries the fields of an add or update request.
type ItemInput struct {
	Name     string
	Price    float64
	Quantity int
	CallerID string
}

// CatalogOptions configures optional collaborators of CatalogService.
type CatalogOptions struct {
	// Locker serializes updates with purchases of the same item. Nil disables locking.
	Locker    lock.Locker
	Publisher EventPublisher
}

// CatalogService manages catalog items.
type CatalogService struct {
	items     store.ItemStore
	admin     auth.Authorizer
	locker    lock.Locker
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(
	items store.ItemStore,
	admin auth.Authorizer,
	logger *zap.Logger,
	opts CatalogOptions,
) *CatalogService {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}

	return &CatalogService{
		items:     items,
		admin:     admin,
		locker:    opts.Locker,
		publisher: publisher,
		logger:    logger,
	}
}

// AddItem registers a new item. Only the admin may call it and names are unique.
func (s *CatalogService) AddItem(ctx context.Context, in ItemInput) (*model.Item, error) {
	item := &model.Item{Name: in.Name, Price: in.Price, Quantity: in.Quantity}
	if err := s.checkMutation(in.CallerID, item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Info("item already registered", zap.String("item_name", in.Name))
		}
		return nil, translate("add item", in.Name, err)
	}

	s.logger.Info("item added",
		zap.String("item_name", created.Name),
		zap.Float64("price", created.Price),
		zap.Int("quantity", created.Quantity),
	)
	s.publisher.Publish(model.NewStockEvent(model.EventItemAdded, *created))

	return created, nil
}

// UpdateItem replaces price and quantity of an existing item. Cart entries
// referencing the item are left untouched.
func (s *CatalogService) UpdateItem(ctx context.Context, in ItemInput) (*model.Item, error) {
	item := &model.Item{Name: in.Name, Price: in.Price, Quantity: in.Quantity}
	if err := s.checkMutation(in.CallerID, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	var updated *model.Item
	err := withLock(ctx, s.locker, in.Name, func() error {
		var err error
		updated, err = s.items.Update(ctx, in.Name, in.Price, in.Quantity)
		return err
	})
	if err != nil {
		return nil, translate("update item", in.Name, err)
	}

	s.logger.Info("item updated",
		zap.String("item_name", updated.Name),
		zap.Float64("price", updated.Price),
		zap.Int("quantity", updated.Quantity),
	)
	s.publisher.Publish(model.NewStockEvent(model.EventItemUpdated, *updated))

	return updated, nil
}

// ListAll returns every catalog item in store order.
func (s *CatalogService) ListAll(ctx context.Context) ([]model.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListFiltered returns the items whose name contains nameSubstring, sorted by order.
func (s *CatalogService) ListFiltered(ctx context.Context, order query.Order, nameSubstring string) ([]model.Item, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("list filtered items: %w", InvalidInput(err))
	}

	items, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out, err := query.Apply(items, nameSubstring, order)
	if err != nil {
		return nil, fmt.Errorf("list filtered items: %w", InvalidInput(err))
	}
	return out, nil
}

// checkMutation authorizes the caller before looking at the payload.
func (s *CatalogService) checkMutation(callerID string, item *model.Item) error {
	if err := s.admin.Authorize(callerID); err != nil {
		s.logger.Warn("unauthorized catalog mutation", zap.String("item_name", item.Name))
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if err := item.Validate(); err != nil {
		return InvalidInput(err)
	}

	return nil
}
