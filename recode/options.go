// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"errors"
	"fmt"
	"time"

	"github.com/recode-ua/recode/spatial"
)

// Default option values.
const (
	DefaultBaseURL            = "https://api.visicom.ua/data-api/5.0"
	DefaultLang               = "ru"
	DefaultTimeout            = 30 * time.Second
	DefaultProgressEvery      = 100
	DefaultMaxShownCandidates = 10
	DefaultMemoryCacheSize    = 4096
)

// Options configures a reconciliation run.
type Options struct {
	// APIKey is the Visicom Data API key
	APIKey string

	// BaseURL is the Visicom Data API root, without the language segment
	BaseURL string

	// Lang selects the language of the returned address properties
	Lang string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout bounds every geocoder request
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// CachePath is the duckdb file caching geocoder responses. Empty disables
	// the cache.
	CachePath string

	// MemoryCacheSize is how many responses are kept in memory during a run.
	// Zero disables the memory cache.
	MemoryCacheSize int

	// ThresholdKm is the distance under which two coordinates are the same
	// place
	ThresholdKm float64

	// ProgressEvery is how often, in entries, progress is reported
	ProgressEvery int
}

// ErrInvalidOptions is returned by Validate.
var ErrInvalidOptions = errors.New("invalid options")

// Validate rejects values that have no meaningful default, such as a
// negative threshold.
func (o *Options) Validate() error {
	switch {
	case o.ThresholdKm <= 0:
		return fmt.Errorf("%w: threshold must be positive, got %v km", ErrInvalidOptions, o.ThresholdKm)
	case o.Timeout < 0:
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidOptions, o.Timeout)
	case o.ProgressEvery < 0:
		return fmt.Errorf("%w: negative progress interval %d", ErrInvalidOptions, o.ProgressEvery)
	case o.MemoryCacheSize < 0:
		return fmt.Errorf("%w: negative memory cache size %d", ErrInvalidOptions, o.MemoryCacheSize)
	}

	return nil
}

// WithDefaults returns a copy of the options with unset values replaced by
// defaults.
func (o *Options) WithDefaults() Options {
	var opts Options
	if o != nil {
		opts = *o
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}

	if opts.UserAgent == "" {
		opts.UserAgent = "recode/unknown"
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.ThresholdKm <= 0 {
		opts.ThresholdKm = spatial.DefaultThresholdKm
	}

	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}

	return opts
}
