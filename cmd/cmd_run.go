// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/recode-ua/recode/recode"
	"github.com/recode-ua/recode/recode/utils"
	"github.com/spf13/cobra"
)

var runOptions = struct {
	Input       string
	Output      string
	Table       string
	ProgressBar bool
}{}

// geocoderSession is a geocoder plus the resources backing it.
type geocoderSession struct {
	geocoder recode.Geocoder
	tiers    []cacheTier
	db       *sql.DB
}

type cacheTier struct {
	name   string
	cached *recode.CachingGeocoder
}

func (s *geocoderSession) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// wrap puts a cache in front of the current geocoder.
func (s *geocoderSession) wrap(name string, cache recode.ResponseCache) {
	cached := recode.NewCachingGeocoder(s.geocoder, cache)
	s.geocoder = cached
	s.tiers = append(s.tiers, cacheTier{name: name, cached: cached})
}

func (s *geocoderSession) logCacheMetrics() {
	for _, t := range s.tiers {
		log.Printf("Cache (%s) - %d hits, %d misses", t.name, t.cached.Metrics.Hits, t.cached.Metrics.Misses)
	}
}

func openResponseCache(path string) (*sql.DB, recode.ResponseCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	cache := recode.NewResponseCache(db)
	if err := cache.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return db, cache, nil
}

func openGeocoder(opts *recode.Options) (*geocoderSession, error) {
	visicom, err := recode.NewVisicomGeocoder(opts)
	if err != nil {
		return nil, fmt.Errorf("%w - pass --key or set %s", err, apiKeyEnv)
	}

	session := &geocoderSession{geocoder: visicom}

	if opts.CachePath != "" {
		db, cache, err := openResponseCache(opts.CachePath)
		if err != nil {
			return nil, err
		}

		session.db = db
		session.wrap("duckdb", cache)
	}

	if opts.MemoryCacheSize > 0 {
		cache, err := recode.NewMemoryResponseCache(opts.MemoryCacheSize)
		if err != nil {
			session.Close()

			return nil, err
		}

		session.wrap("memory", cache)
	}

	return session, nil
}

func newEngine(opts *recode.Options, geocoder recode.Geocoder) *recode.Engine {
	o := opts.WithDefaults()

	engine := recode.NewEngine(geocoder)
	engine.ThresholdKm = o.ThresholdKm
	engine.Timeout = o.Timeout

	return engine
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Geocode and reconcile every entry of a collection",
	Long: `Reads the entries collection, geocodes every entry with an address and a
city, and writes the collection back with the ruAddress* and visicom* fields.
Entries are processed one at a time; a failure on one entry never stops the
batch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		collection, err := recode.LoadCollection(runOptions.Input)
		if err != nil {
			return err
		}

		session, err := openGeocoder(options)
		if err != nil {
			return err
		}
		defer session.Close()

		batch := &recode.Batch{
			Engine:        newEngine(options, session.geocoder),
			ProgressEvery: options.WithDefaults().ProgressEvery,
			ProgressBar:   runOptions.ProgressBar,
		}

		log.Printf("Geocoding %s entries from %s", utils.FormatInt(int64(len(collection.Entries))), runOptions.Input)

		metrics, runErr := batch.Run(cmd.Context(), collection)

		log.Printf(
			"Geocoding complete - %d entries, %d skipped, %d enriched, %d with coordinates, %d warnings (%d ambiguous), %d geocoder errors",
			metrics.Total,
			metrics.Skipped,
			metrics.Enriched,
			metrics.WithCoords,
			metrics.Warnings,
			metrics.Ambiguous,
			metrics.GeocodeErrors,
		)

		if metrics.GeocodeErrors > 0 {
			log.Printf(
				"Geocoder errors - %d rate limited, %d quota exceeded or key rejected, %d timeouts",
				metrics.RateLimited,
				metrics.QuotaExceeded,
				metrics.Timeouts,
			)
		}

		if metrics.Enriched > 0 && metrics.QuotaExceeded == metrics.Enriched {
			log.Printf("⚠️ Every geocoder call was rejected, check the API key")
		}

		session.logCacheMetrics()

		if runErr != nil {
			return runErr
		}

		if err := collection.Save(runOptions.Output); err != nil {
			return err
		}

		log.Printf("✅ Wrote %s", runOptions.Output)

		if runOptions.Table != "" {
			if err := recode.ExportTable(collection, runOptions.Table); err != nil {
				return err
			}

			log.Printf("✅ Wrote %s", runOptions.Table)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(
		&runOptions.Input,
		"input",
		"i",
		"entries.json",
		"Collection to geocode",
	)
	runCmd.Flags().StringVarP(
		&runOptions.Output,
		"output",
		"o",
		"entries-visicom-ua.json",
		"Where to write the enriched collection",
	)
	runCmd.Flags().StringVar(
		&runOptions.Table,
		"table",
		"",
		"Also write the tab separated export to this path",
	)
	runCmd.Flags().IntVar(
		&options.ProgressEvery,
		"progress-every",
		recode.DefaultProgressEvery,
		"Log a status line every N entries when no progress bar is drawn",
	)
	runCmd.Flags().BoolVar(
		&runOptions.ProgressBar,
		"progress-bar",
		true,
		"Draw a progress bar when stderr is a terminal",
	)
}
