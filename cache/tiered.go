package cache

import (
	"context"
	"sync"
)

// TwoTier combines a bounded hot LRU with an optional cold store.
//
// Reads are read-through: a cold hit is promoted to the hot tier. Writes
// are write-through with fire-and-forget cold writes. Cold-tier failures
// of any kind are absorbed; callers only ever observe the hot semantics.
type TwoTier[V any] struct {
	hot  *LRU[V]
	cold ColdStore

	// pending tracks in-flight cold writes so Flush can drain them.
	pending sync.WaitGroup
}

// NewTwoTier creates a two-tier cache with the given hot capacity.
// cold may be nil for a hot-only cache.
func NewTwoTier[V any](capacity int, cold ColdStore) *TwoTier[V] {
	return &TwoTier[V]{
		hot:  NewLRU[V](capacity),
		cold: cold,
	}
}

// Get returns the cached value for key. A hot hit returns immediately; on
// a miss the cold store is consulted and a hit promoted. Cold errors and
// type mismatches read as misses.
func (c *TwoTier[V]) Get(ctx context.Context, key Key) (V, bool) {
	ks := key.String()
	if v, ok := c.hot.Get(ks); ok {
		return v, true
	}

	var zero V
	if c.cold == nil {
		return zero, false
	}

	raw, ok, err := c.coldGet(ctx, ks)
	if err != nil || !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	c.hot.Set(ks, v)
	return v, true
}

// Set writes the value to the hot tier and schedules a non-blocking cold
// write. Cold write failures, synchronous or asynchronous, are swallowed.
func (c *TwoTier[V]) Set(ctx context.Context, key Key, value V) {
	ks := key.String()
	c.hot.Set(ks, value)

	if c.cold == nil {
		return
	}
	// The cold write must not observe cancellation of the caller's task.
	bg := context.WithoutCancel(ctx)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer func() { _ = recover() }()
		_ = c.cold.Set(bg, ks, value)
	}()
}

// Has reports presence, hot first, with error-swallowing cold fallback.
func (c *TwoTier[V]) Has(ctx context.Context, key Key) bool {
	ks := key.String()
	if c.hot.Has(ks) {
		return true
	}
	if c.cold == nil {
		return false
	}
	ok, err := c.coldHas(ctx, ks)
	if err != nil {
		return false
	}
	return ok
}

// Delete removes the key from both tiers, returning true if either tier
// held it. A cold error leaves the hot outcome standing.
func (c *TwoTier[V]) Delete(ctx context.Context, key Key) bool {
	ks := key.String()
	hotDeleted := c.hot.Delete(ks)
	if c.cold == nil {
		return hotDeleted
	}
	coldDeleted, err := c.coldDelete(ctx, ks)
	if err != nil {
		return hotDeleted
	}
	return hotDeleted || coldDeleted
}

// Clear empties the hot tier and attempts to clear the cold tier,
// swallowing cold errors.
func (c *TwoTier[V]) Clear(ctx context.Context) {
	c.hot.Clear()
	if c.cold == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = c.cold.Clear(ctx)
}

// Flush blocks until all scheduled cold writes have completed.
func (c *TwoTier[V]) Flush() {
	c.pending.Wait()
}

// Stats returns the hot-tier statistics.
func (c *TwoTier[V]) Stats() Stats {
	return c.hot.Stats()
}

// coldGet isolates the cold read so a panicking store reads as a miss.
func (c *TwoTier[V]) coldGet(ctx context.Context, key string) (raw any, ok bool, err error) {
	defer func() {
		if recover() != nil {
			raw, ok, err = nil, false, nil
		}
	}()
	return c.cold.Get(ctx, key)
}

func (c *TwoTier[V]) coldHas(ctx context.Context, key string) (ok bool, err error) {
	defer func() {
		if recover() != nil {
			ok, err = false, nil
		}
	}()
	return c.cold.Has(ctx, key)
}

func (c *TwoTier[V]) coldDelete(ctx context.Context, key string) (ok bool, err error) {
	defer func() {
		if recover() != nil {
			ok, err = false, nil
		}
	}()
	return c.cold.Delete(ctx, key)
}
