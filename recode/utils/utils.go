// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText composes the string to NFC and trims surrounding spaces, so
// that decomposed Cyrillic letters (й, ї) compare equal to their composed
// form.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// EscapeNewlines replaces every line feed with the two characters `\n`.
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
