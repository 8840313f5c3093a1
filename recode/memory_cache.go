// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedResponse struct {
	body      []byte
	fetchedAt time.Time
}

// lruResponseCache keeps the most recently used responses in memory. Records
// often repeat an address, so it spares the duckdb round trip (or the
// network call when no cache file is configured) within a run.
type lruResponseCache struct {
	l1 *lru.Cache[string, cachedResponse]
}

// NewMemoryResponseCache creates an in-memory cache holding up to size
// responses.
func NewMemoryResponseCache(size int) (ResponseCache, error) {
	l1, err := lru.New[string, cachedResponse](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}

	return &lruResponseCache{l1: l1}, nil
}

func (c *lruResponseCache) CreateSchema() error {
	return nil
}

func (c *lruResponseCache) Get(_ context.Context, query string) ([]byte, bool, error) {
	r, ok := c.l1.Get(query)
	if !ok {
		return nil, false, nil
	}

	return r.body, true, nil
}

func (c *lruResponseCache) Put(_ context.Context, query string, body []byte) error {
	c.l1.Add(query, cachedResponse{body: body, fetchedAt: time.Now().UTC()})

	return nil
}

func (c *lruResponseCache) Stats() (CacheStats, error) {
	var stats CacheStats

	for _, r := range c.l1.Values() {
		stats.Responses++

		t := r.fetchedAt
		if stats.Oldest == nil || t.Before(*stats.Oldest) {
			stats.Oldest = &t
		}

		if stats.Newest == nil || t.After(*stats.Newest) {
			stats.Newest = &t
		}
	}

	return stats, nil
}

func (c *lruResponseCache) Clear() (int64, error) {
	n := c.l1.Len()
	c.l1.Purge()

	return int64(n), nil
}
