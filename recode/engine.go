// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/recode-ua/recode/spatial"
)

// DiagnosticKind tells what a Diagnostic is about.
type DiagnosticKind int

const (
	// DiagnosticResponse the geocoder response could not be interpreted.
	DiagnosticResponse DiagnosticKind = iota
	// DiagnosticGeometry a feature had no usable centroid.
	DiagnosticGeometry
	// DiagnosticGeocoder the geocoder call failed.
	DiagnosticGeocoder
	// DiagnosticWarning a warning was attached to the entry.
	DiagnosticWarning
)

var diagnosticKindNames = map[DiagnosticKind]string{
	DiagnosticResponse: "response",
	DiagnosticGeometry: "geometry",
	DiagnosticGeocoder: "geocoder",
	DiagnosticWarning:  "warning",
}

func (k DiagnosticKind) String() string {
	if name, ok := diagnosticKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is a non fatal finding about one entry.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return d.Kind.String() + ": " + d.Message
}

// ReconciledAddress is the settlement, street and house number derived from
// the geocoder properties, each falling back to the entry's own data.
type ReconciledAddress struct {
	Settlement string
	Street     string
	// HouseNo is empty when neither the geocoder nor the address has one.
	HouseNo string
}

// Result is the outcome of reconciling one entry.
type Result struct {
	// Entry is the enriched copy, or the original entry when Skipped.
	Entry *Entry

	// StreetAddress is the preferred variant of the entry's address.
	StreetAddress string

	// FullAddress is the query sent to the geocoder.
	FullAddress string

	// Skipped is set when the entry lacks an address or a city.
	Skipped bool

	Address *ReconciledAddress

	// Candidates holds one representative per coordinate cluster, most
	// relevant first.
	Candidates []spatial.Point

	// Coords is the reconciled coordinate, Candidates[0].
	Coords *spatial.Point

	Warning     string
	Diagnostics []Diagnostic

	// Err is the geocoder failure, if any. It never stops the batch.
	Err error
}

// Ambiguous reports whether the geocoder matched more than one place.
func (r *Result) Ambiguous() bool {
	return len(r.Candidates) > 1
}

func (r *Result) diagnose(kind DiagnosticKind, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Engine reconciles entries against a geocoder. It keeps no state between
// entries.
type Engine struct {
	Geocoder Geocoder

	// ThresholdKm separates "same place" from "different place", both for
	// clustering and for drift warnings.
	ThresholdKm float64

	// MaxShownCandidates bounds the coordinates listed in an ambiguity
	// warning.
	MaxShownCandidates int

	// Timeout bounds each geocoder call. Zero means no engine level timeout.
	Timeout time.Duration
}

// NewEngine creates an engine using the default threshold.
func NewEngine(geocoder Geocoder) *Engine {
	return &Engine{
		Geocoder:           geocoder,
		ThresholdKm:        spatial.DefaultThresholdKm,
		MaxShownCandidates: DefaultMaxShownCandidates,
	}
}

// Reconcile geocodes one entry and returns the enriched copy. The given
// entry is never modified.
func (e *Engine) Reconcile(ctx context.Context, entry *Entry) *Result {
	streetAddress, ok := ExtractPreferredAddress(entry.Address())
	city := entry.City()

	if !ok || city == "" {
		return &Result{Entry: entry, Skipped: true}
	}

	res := &Result{
		Entry:         entry.Clone(),
		StreetAddress: streetAddress,
		FullAddress:   streetAddress + ", " + city,
	}

	features := e.features(ctx, res)

	res.Address = ReconcileAddress(city, streetAddress, features)
	res.apply(FieldRuAddressSettlement, res.Address.Settlement)
	res.apply(FieldRuAddressStreet, res.Address.Street)
	res.apply(FieldRuAddressHouseNo, res.Address.HouseNo)

	if len(features) == 0 {
		return res
	}

	candidates, diagnostics := ClusterCoordinates(features, e.ThresholdKm)
	res.Diagnostics = append(res.Diagnostics, diagnostics...)

	if len(candidates) == 0 {
		return res
	}

	res.Candidates = candidates
	res.Coords = &candidates[0]
	res.Warning = e.warning(entry.Coords(), candidates)

	res.Entry.SetString(FieldVisicomCoords, res.Coords.Serialize())

	if res.Warning != "" {
		res.diagnose(DiagnosticWarning, "%s", res.Warning)
		res.Entry.SetString(FieldVisicomWarning, res.Warning)
	}

	return res
}

func (r *Result) apply(field, value string) {
	if value == "" && field == FieldRuAddressHouseNo {
		r.Entry.Delete(field)

		return
	}

	r.Entry.SetString(field, value)
}

// features calls the geocoder and interprets its answer. Failures become
// diagnostics and yield no features.
func (e *Engine) features(ctx context.Context, res *Result) []Feature {
	if e.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	body, err := e.Geocoder.Geocode(ctx, res.FullAddress)
	if err != nil {
		res.Err = err
		res.diagnose(DiagnosticGeocoder, "%s", err)

		return nil
	}

	features, diagnostics, err := ExtractFeatures(body)
	res.Diagnostics = append(res.Diagnostics, diagnostics...)

	if err != nil {
		res.diagnose(DiagnosticResponse, "%s", err)

		return nil
	}

	return features
}

// warning decides whether the reconciled coordinates need a human look.
func (e *Engine) warning(previous *spatial.Point, candidates []spatial.Point) string {
	if len(candidates) == 1 {
		if previous == nil {
			return ""
		}

		if d := spatial.DistanceKm(*previous, candidates[0]); d > e.ThresholdKm {
			return fmt.Sprintf("Координаты изменились на %.1f км", d)
		}

		return ""
	}

	maxShown := e.MaxShownCandidates
	if maxShown <= 0 {
		maxShown = DefaultMaxShownCandidates
	}

	shown := make([]string, 0, maxShown+1)
	for i, c := range candidates {
		if i == maxShown {
			shown = append(shown, "...")

			break
		}

		shown = append(shown, c.Serialize())
	}

	return "Найдено несколько вариантов координат: " + strings.Join(shown, ", ")
}

// ReconcileAddress merges the first feature's address properties with the
// locally parsed street address.
func ReconcileAddress(city, streetAddress string, features []Feature) *ReconciledAddress {
	street, houseNo, _ := SplitStreetAndHouseNumber(streetAddress)

	var first *Feature
	if len(features) > 0 {
		first = &features[0]
	} else {
		first = &Feature{}
	}

	addr := &ReconciledAddress{
		Settlement: city,
		Street:     street,
		HouseNo:    houseNo,
	}

	if settlement := first.Settlement(); settlement != "" {
		// "Київ (Київська обл.)" -> "Київ"
		name, _, _ := strings.Cut(settlement, "(")
		if name = strings.TrimSpace(name); name != "" {
			addr.Settlement = name
		}
	}

	if s := first.Street(); s != "" {
		addr.Street = strings.TrimSpace(first.StreetType() + " " + s)
	}

	if h := first.HouseNo(); h != "" {
		addr.HouseNo = h
	}

	return addr
}
