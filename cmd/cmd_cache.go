// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/recode-ua/recode/recode/utils"
	"github.com/spf13/cobra"
)

var errNoCache = errors.New("no cache configured - pass --cache")

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the geocoder response cache",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}

		if options.CachePath == "" {
			return errNoCache
		}

		if _, err := os.Stat(options.CachePath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cache not found at %s", options.CachePath)
		}

		return nil
	},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04:05")
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many responses are cached",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, cache, err := openResponseCache(options.CachePath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := cache.Stats()
		if err != nil {
			return err
		}

		fmt.Println(renderKeyValues([][2]string{
			{"responses", utils.FormatInt(int64(stats.Responses))},
			{"oldest", formatTime(stats.Oldest)},
			{"newest", formatTime(stats.Newest)},
		}))

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, cache, err := openResponseCache(options.CachePath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := cache.Clear()
		if err != nil {
			return err
		}

		fmt.Printf("✅ Removed %s cached responses\n", utils.FormatInt(n))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
