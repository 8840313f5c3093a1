// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/recode-ua/recode/recode"
	"github.com/recode-ua/recode/spatial"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

const apiKeyEnv = "VISICOM_API_KEY"

var rootCmd = &cobra.Command{
	Use:   "recode",
	Short: "Enrich address records with Visicom geocoding results",
	Long: `
recode geocodes a collection of address records through the Visicom Data API,
reconciles the returned settlement, street, house number and coordinates with
the original free text address, and flags entries whose coordinates moved or
matched more than one place.
`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if options.APIKey == "" {
			// a missing .env is fine
			_ = godotenv.Load(".env")
			options.APIKey = os.Getenv(apiKeyEnv)
		}

		options.UserAgent = fmt.Sprintf("recode/%s", Version)

		return options.Validate()
	},
}

var options = &recode.Options{}

var Version = "dev"

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(
		&options.APIKey,
		"key",
		"",
		"Visicom Data API key (defaults to $"+apiKeyEnv+", also read from .env)",
	)
	flags.StringVar(
		&options.BaseURL,
		"base-url",
		recode.DefaultBaseURL,
		"Visicom Data API root",
	)
	flags.StringVar(
		&options.Lang,
		"lang",
		recode.DefaultLang,
		"Language of the returned address properties (ru, uk, en)",
	)
	flags.DurationVar(
		&options.Timeout,
		"timeout",
		recode.DefaultTimeout,
		"Timeout of every geocoder request",
	)
	flags.StringVar(
		&options.CachePath,
		"cache",
		"",
		"duckdb file where geocoder responses are cached; empty disables the cache",
	)
	flags.IntVar(
		&options.MemoryCacheSize,
		"memory-cache",
		recode.DefaultMemoryCacheSize,
		"Responses kept in memory during a run; 0 disables it",
	)
	flags.Float64Var(
		&options.ThresholdKm,
		"threshold-km",
		spatial.DefaultThresholdKm,
		"Distance under which two coordinates are considered the same place",
	)
	flags.BoolVar(
		&options.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	flags.BoolVar(
		&options.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
