// Package memstore provides the generic keyed collection backing every
// in-memory repository. Mutations are copy-on-write under the collection
// lock, so a snapshot handed to a reader is never modified behind its back
// and each update is atomic per entity.
package memstore

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Update when the id is unknown.
var ErrNotFound = errors.New("memstore: not found")

// Collection is an insertion-ordered map keyed by entity id. The insertion
// order is what makes stable sorts reproducible across runs.
type Collection[T any] struct {
	mu    sync.RWMutex
	byID  map[string]T
	order []string
	id    func(T) string
}

// NewCollection returns an empty collection; id extracts the key from a value.
func NewCollection[T any](id func(T) string) *Collection[T] {
	return &Collection[T]{
		byID: make(map[string]T),
		id:   id,
	}
}

// Get returns the value for id and whether it exists.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byID[id]
	return v, ok
}

// Put inserts or replaces a value. First insertion fixes its position in
// iteration order; replacement keeps it.
func (c *Collection[T]) Put(v T) {
	key := c.id(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byID[key]; !exists {
		c.order = append(c.order, key)
	}
	c.byID[key] = v
}

// Update atomically replaces the value for id with fn's result. fn must
// return a fresh value (clone, then mutate) so concurrent readers keep a
// consistent snapshot. If fn errors, nothing changes.
func (c *Collection[T]) Update(id string, fn func(T) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.byID[id]
	if !ok {
		return zero, ErrNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return zero, err
	}
	c.byID[id] = next
	return next, nil
}

// Delete removes id if present.
func (c *Collection[T]) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return
	}
	delete(c.byID, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// List returns a snapshot of all values in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byID[k])
	}
	return out
}

// Len returns the number of stored values.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
