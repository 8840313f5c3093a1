// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// BatchMetrics tracks the outcome of a batch run.
type BatchMetrics struct {
	Total         int
	Skipped       int
	Enriched      int
	WithCoords    int
	Warnings      int
	Ambiguous     int
	GeocodeErrors int

	// RateLimited, QuotaExceeded and Timeouts break GeocodeErrors down. A
	// run full of QuotaExceeded usually means the API key was rejected.
	RateLimited   int
	QuotaExceeded int
	Timeouts      int
}

// Record accounts for one result.
func (m *BatchMetrics) Record(res *Result) {
	m.Total++

	if res.Skipped {
		m.Skipped++

		return
	}

	m.Enriched++

	if res.Coords != nil {
		m.WithCoords++
	}

	if res.Warning != "" {
		m.Warnings++
	}

	if res.Ambiguous() {
		m.Ambiguous++
	}

	if res.Err != nil {
		m.GeocodeErrors++

		switch {
		case IsRateLimitError(res.Err):
			m.RateLimited++
		case IsQuotaExceededError(res.Err):
			m.QuotaExceeded++
		case IsTimeoutError(res.Err):
			m.Timeouts++
		}
	}
}

// Merge combines two BatchMetrics.
func (m *BatchMetrics) Merge(o *BatchMetrics) *BatchMetrics {
	if o == nil {
		return m
	}

	m.Total += o.Total
	m.Skipped += o.Skipped
	m.Enriched += o.Enriched
	m.WithCoords += o.WithCoords
	m.Warnings += o.Warnings
	m.Ambiguous += o.Ambiguous
	m.GeocodeErrors += o.GeocodeErrors
	m.RateLimited += o.RateLimited
	m.QuotaExceeded += o.QuotaExceeded
	m.Timeouts += o.Timeouts

	return m
}

// Batch runs the engine over every entry of a collection, one at a time.
type Batch struct {
	Engine *Engine

	// ProgressEvery is how often, in entries, a status line is logged.
	ProgressEvery int

	// ProgressBar draws a progress bar instead of status lines when stderr
	// is a terminal.
	ProgressBar bool

	// OnResult, when set, is called after each entry.
	OnResult func(i int, res *Result)
}

// Run reconciles the collection in place. Only a cancelled context stops it
// early.
func (b *Batch) Run(ctx context.Context, c *Collection) (*BatchMetrics, error) {
	var metrics BatchMetrics

	n := len(c.Entries)

	every := b.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	var bar *progressbar.ProgressBar
	if b.ProgressBar && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, entry := range c.Entries {
		if err := ctx.Err(); err != nil {
			return &metrics, fmt.Errorf("stopped at entry %d of %d: %w", i, n, err)
		}

		if bar == nil && i%every == 0 {
			log.Printf("Doing: %d / %d", i, n)
		}

		res := b.Engine.Reconcile(ctx, entry)
		c.Entries[i] = res.Entry

		for _, d := range res.Diagnostics {
			log.Printf("[%s] %s for %s", entry.ID(), d, res.FullAddress)
		}

		metrics.Record(res)

		if b.OnResult != nil {
			b.OnResult(i, res)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Printf("Updating progress bar: %s", err)
			}
		}
	}

	return &metrics, nil
}
