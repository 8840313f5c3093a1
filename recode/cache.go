// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// ResponseCache stores raw geocoder responses keyed by query text.
type ResponseCache interface {
	// CreateSchema creates the geocode_responses table
	CreateSchema() error

	// Get returns the cached body for a query
	Get(ctx context.Context, query string) ([]byte, bool, error)

	// Put stores or replaces the body for a query
	Put(ctx context.Context, query string, body []byte) error

	// Stats summarizes the cache content
	Stats() (CacheStats, error)

	// Clear removes every cached response
	Clear() (int64, error)
}

// CacheStats summarizes a ResponseCache.
type CacheStats struct {
	Responses int
	Oldest    *time.Time
	Newest    *time.Time
}

type sqlResponseCache struct {
	db *sql.DB
}

// NewResponseCache creates a cache on top of a duckdb connection.
func NewResponseCache(db *sql.DB) ResponseCache {
	return &sqlResponseCache{db: db}
}

func (r *sqlResponseCache) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_responses (
			query VARCHAR PRIMARY KEY,
			body VARCHAR NOT NULL,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlResponseCache) Get(ctx context.Context, query string) ([]byte, bool, error) {
	var body string

	err := r.db.QueryRowContext(ctx,
		"SELECT body FROM geocode_responses WHERE query = ?",
		query,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading cached response: %w", err)
	}

	return []byte(body), true, nil
}

func (r *sqlResponseCache) Put(ctx context.Context, query string, body []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO geocode_responses (query, body, fetched_at) VALUES (?, ?, ?)",
		query, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("caching response: %w", err)
	}

	return nil
}

func (r *sqlResponseCache) Stats() (CacheStats, error) {
	var (
		stats          CacheStats
		oldest, newest sql.NullTime
	)

	err := r.db.QueryRow(
		"SELECT COUNT(*), MIN(fetched_at), MAX(fetched_at) FROM geocode_responses",
	).Scan(&stats.Responses, &oldest, &newest)
	if err != nil {
		return stats, fmt.Errorf("reading cache stats: %w", err)
	}

	if oldest.Valid {
		stats.Oldest = &oldest.Time
	}

	if newest.Valid {
		stats.Newest = &newest.Time
	}

	return stats, nil
}

func (r *sqlResponseCache) Clear() (int64, error) {
	res, err := r.db.Exec("DELETE FROM geocode_responses")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}

	return res.RowsAffected()
}

// CacheMetrics counts cache hits and misses.
type CacheMetrics struct {
	Hits   int
	Misses int
}

// CachingGeocoder serves responses from a ResponseCache and only calls the
// wrapped geocoder on a miss. Failed calls are not cached.
type CachingGeocoder struct {
	next    Geocoder
	cache   ResponseCache
	Metrics CacheMetrics
}

// NewCachingGeocoder wraps next with cache.
func NewCachingGeocoder(next Geocoder, cache ResponseCache) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache}
}

// Geocode implements Geocoder.
func (g *CachingGeocoder) Geocode(ctx context.Context, address string) ([]byte, error) {
	body, ok, err := g.cache.Get(ctx, address)
	if err != nil {
		log.Printf("Cache lookup failed for %s: %s", address, err)
	} else if ok {
		g.Metrics.Hits++

		return body, nil
	}

	g.Metrics.Misses++

	body, err = g.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Put(ctx, address, body); err != nil {
		log.Printf("Cache store failed for %s: %s", address, err)
	}

	return body, nil
}
