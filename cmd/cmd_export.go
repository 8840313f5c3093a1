// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/recode-ua/recode/recode"
	"github.com/recode-ua/recode/recode/utils"
	"github.com/spf13/cobra"
)

var exportOptions = struct {
	Input  string
	Output string
}{}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Flatten an enriched collection into a tab separated table",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		collection, err := recode.LoadCollection(exportOptions.Input)
		if err != nil {
			return err
		}

		if err := recode.ExportTable(collection, exportOptions.Output); err != nil {
			return err
		}

		log.Printf("✅ Exported %s entries to %s",
			utils.FormatInt(int64(len(collection.Entries))),
			exportOptions.Output)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(
		&exportOptions.Input,
		"input",
		"i",
		"entries-visicom-ua.json",
		"Enriched collection",
	)
	exportCmd.Flags().StringVarP(
		&exportOptions.Output,
		"output",
		"o",
		"entries-visicom-ua.csv",
		"Where to write the table",
	)
}
