package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// record is the backend-neutral document shape shared by both collections.
type record struct {
	id       string
	name     string
	price    float64
	quantity int
}

// memoryCollection is an insertion-ordered set of records keyed by name.
type memoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]record
}

func newMemoryCollection() *memoryCollection {
	return &memoryCollection{
		docs: make(map[string]record),
	}
}

func checkContext(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func (c *memoryCollection) list(ctx context.Context) ([]record, error) {
	if err := checkContext(ctx, "list documents"); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]record, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.docs[name])
	}

	return out, nil
}

func (c *memoryCollection) get(ctx context.Context, name string) (record, error) {
	if err := checkContext(ctx, "get document"); err != nil {
		return record{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, exists := c.docs[name]
	if !exists {
		return record{}, ErrNotFound
	}

	return rec, nil
}

func (c *memoryCollection) insert(ctx context.Context, rec record) (record, error) {
	if err := checkContext(ctx, "insert document"); err != nil {
		return record{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[rec.name]; exists {
		return record{}, ErrAlreadyExists
	}

	rec.id = uuid.New().String()
	c.docs[rec.name] = rec
	c.order = append(c.order, rec.name)

	return rec, nil
}

// modify applies fn to the stored record under the write lock. fn may
// reject the change by returning an error.
func (c *memoryCollection) modify(ctx context.Context, name string, fn func(*record) error) (record, error) {
	if err := checkContext(ctx, "update document"); err != nil {
		return record{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.docs[name]
	if !exists {
		return record{}, ErrNotFound
	}

	if err := fn(&rec); err != nil {
		return record{}, err
	}

	c.docs[name] = rec

	return rec, nil
}

func (c *memoryCollection) remove(ctx context.Context, name string) error {
	if err := checkContext(ctx, "delete document"); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[name]; !exists {
		return ErrNotFound
	}

	delete(c.docs, name)
	c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == name })

	return nil
}
