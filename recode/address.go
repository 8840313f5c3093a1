// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"regexp"
	"strings"

	"github.com/recode-ua/recode/recode/utils"
)

// languageSeparator joins the language variants of an address line.
const languageSeparator = " / "

// trailingHouseLabel matches what is left of "буд. 12" or ", д." once the
// house number has been cut off.
var trailingHouseLabel = regexp.MustCompile(` *,? *?(дом|д|буд|б)? *[.-]* *$`)

// ExtractPreferredAddress returns the first language variant of an address
// line. Addresses are often written as "<ru> / <ua>"; the geocoder gets
// confused by the mix, so only the first one is used.
func ExtractPreferredAddress(composite string) (string, bool) {
	if composite == "" {
		return "", false
	}

	first, _, _ := strings.Cut(composite, languageSeparator)

	address := utils.NormalizeText(first)
	if address == "" {
		return "", false
	}

	return address, true
}

// SplitStreetAndHouseNumber splits a street address at its first ASCII
// digit. The house number is returned untouched; the street is cleaned of
// dangling house labels. ok is false when there is no house number.
func SplitStreetAndHouseNumber(streetAddress string) (street, houseNo string, ok bool) {
	for i := 0; i < len(streetAddress); i++ {
		if ch := streetAddress[i]; '0' <= ch && ch <= '9' {
			return CleanStreetName(streetAddress[:i]), streetAddress[i:], true
		}
	}

	return streetAddress, "", false
}

// CleanStreetName strips a trailing house abbreviation with its punctuation.
func CleanStreetName(street string) string {
	if loc := trailingHouseLabel.FindStringIndex(street); loc != nil {
		return street[:loc[0]]
	}

	return street
}
