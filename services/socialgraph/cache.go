// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package socialgraph

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// queryCache is a bounded LRU map of query results for one snapshot.
//
// A snapshot's graph never changes, so entries never go stale; the cache is
// dropped wholesale with its snapshot on reload.
//
// Thread Safety: All methods are safe for concurrent use.
type queryCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front is most recently used
	flight   singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// CacheStats reports query cache effectiveness.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

func newQueryCache[K comparable, V any](capacity int) *queryCache[K, V] {
	if capacity <= 0 {
		capacity = 128
	}
	return &queryCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *queryCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.hits.Add(1)
		return elem.Value.(*cacheEntry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

func (c *queryCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry[K, V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry[K, V]).key)
			c.evictions.Add(1)
		}
	}
	c.items[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})
}

// peek looks up key without touching recency or stats.
func (c *queryCache[K, V]) peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*cacheEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// getOrCompute returns the cached value for key, computing and storing it
// on a miss. Concurrent misses on the same key share one compute call.
func (c *queryCache[K, V]) getOrCompute(key K, compute func() V) (V, bool) {
	if v, ok := c.get(key); ok {
		return v, true
	}

	v, _, _ := c.flight.Do(fmt.Sprint(key), func() (any, error) {
		// An earlier flight for key may have finished since the miss.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v := compute()
		c.put(key, v)
		return v, nil
	})
	return v.(V), false
}

func (c *queryCache[K, V]) stats() CacheStats {
	c.mu.Lock()
	entries := c.order.Len()
	c.mu.Unlock()
	return CacheStats{
		Entries:   entries,
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
