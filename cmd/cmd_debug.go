// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/mattn/go-isatty"
	"github.com/recode-ua/recode/recode"
	"github.com/spf13/cobra"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd())
}

// h3Resolution is the H3 resolution printed next to candidate coordinates,
// cells are ~0.7 km² at this level.
const h3Resolution = 8

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

type addressAnalysis struct {
	Preferred string `json:"preferred,omitempty"`
	Street    string `json:"street,omitempty"`
	HouseNo   string `json:"house_no,omitempty"`
}

func analyzeAddress(line string) addressAnalysis {
	var a addressAnalysis

	preferred, ok := recode.ExtractPreferredAddress(line)
	if !ok {
		return a
	}

	a.Preferred = preferred
	a.Street, a.HouseNo, _ = recode.SplitStreetAndHouseNumber(preferred)

	return a
}

func analyzeAddresses(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()

		s, err := json.Marshal(analyzeAddress(line))
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(out, "%s\t\t%s\n", line, s); err != nil {
			return err
		}
	}

	return scanner.Err()
}

var debugAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show how address lines are split into street and house number",
	Long: `Reads one address line per line, and prints it followed by the preferred
variant and its street / house number split.

$ echo 'ул. Шевченко, д. 12 / вул. Шевченка, буд. 12' | recode debug address
ул. Шевченко, д. 12 / вул. Шевченка, буд. 12		{"preferred":"ул. Шевченко, д. 12","street":"ул. Шевченко","house_no":"12"}
	`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter addresses to analyze, one per line…")
		}

		if err := analyzeAddresses(input, os.Stdout); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

func printResult(out io.Writer, res *recode.Result) error {
	if res.Skipped {
		_, err := fmt.Fprintln(out, "skipped: missing address or city")

		return err
	}

	w := &errWriter{w: out}
	w.printf("query:      %s\n", res.FullAddress)
	w.printf("settlement: %s\n", res.Address.Settlement)
	w.printf("street:     %s\n", res.Address.Street)
	if local, _, _ := recode.SplitStreetAndHouseNumber(res.StreetAddress); local != "" {
		w.printf("local:      %s (edit distance %d)\n", local, streetDistance(local, res.Address.Street))
	}
	w.printf("house:      %s\n", res.Address.HouseNo)

	for i, c := range res.Candidates {
		cell, err := c.Cell(h3Resolution)
		if err != nil {
			w.printf("candidate %d: %s (%s)\n", i, c.Serialize(), err)

			continue
		}

		w.printf("candidate %d: %s h3=%s\n", i, c.Serialize(), cell)
	}

	if res.Warning != "" {
		w.printf("warning:    %s\n", res.Warning)
	}

	for _, d := range res.Diagnostics {
		w.printf("diagnostic: %s\n", d)
	}

	return w.err
}

// streetDistance is the case insensitive edit distance between two street
// names, counted in runes.
func streetDistance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// errWriter remembers the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}

	_, e.err = fmt.Fprintf(e.w, format, args...)
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode <address> <city>",
	Short: "Reconcile a single address and show every step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openGeocoder(options)
		if err != nil {
			return err
		}
		defer session.Close()

		entry := &recode.Entry{}
		entry.SetString(recode.FieldAddress, args[0])
		entry.SetString(recode.FieldCity, args[1])

		res := newEngine(options, session.geocoder).Reconcile(cmd.Context(), entry)

		return printResult(os.Stdout, res)
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugAddressCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
}
