// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/recode-ua/recode/recode/utils"
)

// TableColumns is the column order of the tabular export.
var TableColumns = []string{
	FieldID,
	FieldAddress,
	FieldCity,
	FieldCoords,
	FieldRuAddressSettlement,
	FieldRuAddressStreet,
	FieldRuAddressHouseNo,
	FieldVisicomCoords,
	FieldVisicomWarning,
}

func tableCell(e *Entry, column string) string {
	if column == FieldCoords {
		if p := e.Coords(); p != nil {
			return p.Serialize()
		}

		return ""
	}

	return utils.EscapeNewlines(e.Text(column))
}

// WriteTable writes the collection as tab separated lines, header first.
// Lines are joined by "\n" with no trailing newline.
func WriteTable(w io.Writer, c *Collection) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(TableColumns, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(TableColumns))

	for i, e := range c.Entries {
		for j, column := range TableColumns {
			row[j] = tableCell(e, column)
		}

		if _, err := bw.WriteString("\n" + strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// ExportTable writes the tabular export of c to path.
func ExportTable(c *Collection, path string) (err error) {
	f, err := os.Create(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return WriteTable(f, c)
}
