package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/auth"
	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/store"
)

const adminID = auth.DefaultAdminID

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.StockEvent
}

func (p *recordingPublisher) Publish(event model.StockEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture wires both services over fresh in-memory stores.
type fixture struct {
	items     *store.MemoryItemStore
	cart      *store.MemoryCartStore
	catalog   *CatalogService
	orders    *OrderService
	publisher *recordingPublisher
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func newFixture(t testingT, opts OrderOptions) *fixture {
	t.Helper()

	admin, err := auth.NewStaticAdmin(adminID)
	require.NoError(t, err)

	f := &fixture{
		items:     store.NewMemoryItemStore(),
		cart:      store.NewMemoryCartStore(),
		publisher: &recordingPublisher{},
	}
	opts.Publisher = f.publisher
	f.catalog = NewCatalogService(f.items, admin, zap.NewNop(), CatalogOptions{Publisher: f.publisher})
	f.orders = NewOrderService(f.items, f.cart, zap.NewNop(), opts)
	return f
}

func (f *fixture) addItem(t testingT, name string, price float64, quantity int) {
	t.Helper()
	_, err := f.catalog.AddItem(context.Background(), ItemInput{
		Name: name, Price: price, Quantity: quantity, CallerID: adminID,
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t testingT, name string) int {
	t.Helper()
	item, err := f.items.Get(context.Background(), name)
	require.NoError(t, err)
	return item.Quantity
}

// failingItemStore returns err from every call.
type failingItemStore struct {
	*store.MemoryItemStore
	err error
}

func (s *failingItemStore) Get(context.Context, string) (*model.Item, error) { return nil, s.err }
func (s *failingItemStore) List(context.Context) ([]model.Item, error)       { return nil, s.err }

// rendezvousItemStore makes the first parties Get callers wait for each
// other after reading, so their reads observe the same quantity.
type rendezvousItemStore struct {
	*store.MemoryItemStore
	parties int

	mu      sync.Mutex
	arrived int
	ready   chan struct{}
}

func newRendezvousItemStore(parties int) *rendezvousItemStore {
	return &rendezvousItemStore{
		MemoryItemStore: store.NewMemoryItemStore(),
		parties:         parties,
		ready:           make(chan struct{}),
	}
}

func (s *rendezvousItemStore) Get(ctx context.Context, name string) (*model.Item, error) {
	item, err := s.MemoryItemStore.Get(ctx, name)

	s.mu.Lock()
	s.arrived++
	if s.arrived == s.parties {
		close(s.ready)
	}
	s.mu.Unlock()

	select {
	case <-s.ready:
	case <-time.After(200 * time.Millisecond):
	}

	return item, err
}

func TestIsBusinessError(t *testing.T) {
	for _, err := range []error{ErrInvalidInput, ErrUnauthorized, ErrConflict, ErrNotFound, ErrInsufficientStock} {
		require.True(t, IsBusinessError(errors.Join(errors.New("ctx"), err)), "%v", err)
	}
	require.False(t, IsBusinessError(errors.New("disk on fire")))
}

func TestResultLabel(t *testing.T) {
	require.Equal(t, "success", resultLabel(nil))
	require.Equal(t, "insufficient_stock", resultLabel(ErrInsufficientStock))
	require.Equal(t, "not_found", resultLabel(ErrNotFound))
	require.Equal(t, "conflict", resultLabel(ErrConflict))
	require.Equal(t, "invalid_input", resultLabel(ErrInvalidInput))
	require.Equal(t, "error", resultLabel(errors.New("boom")))
}
