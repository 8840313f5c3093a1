// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is returned when the geocoder answers with something
// that is neither a Feature nor a FeatureCollection.
var ErrUnexpectedResponse = errors.New("unexpected geocoder response")

// Properties is the property bag of a Feature. Values are kept raw so that a
// mistyped property doesn't spoil the rest of the response.
type Properties map[string]json.RawMessage

// String returns the property as a string, or "" when it is missing or not
// a JSON string.
func (p Properties) String(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// Feature is one candidate match returned by the geocoder.
type Feature struct {
	Type        string          `json:"type"`
	GeoCentroid json.RawMessage `json:"geo_centroid,omitempty"`
	Properties  Properties      `json:"properties"`
}

// Settlement, Street, StreetType and HouseNo expose the address properties
// the reconciliation cares about.
func (f *Feature) Settlement() string { return f.Properties.String("settlement") }
func (f *Feature) Street() string     { return f.Properties.String("street") }
func (f *Feature) StreetType() string { return f.Properties.String("street_type") }
func (f *Feature) HouseNo() string    { return f.Properties.String("house_no") }

// rawFeature holds the members of a feature before they are interpreted,
// so that a mistyped member only spoils itself.
type rawFeature struct {
	Type        json.RawMessage `json:"type"`
	GeoCentroid json.RawMessage `json:"geo_centroid"`
	Properties  json.RawMessage `json:"properties"`
}

// decodeFeature decodes the i-th feature of a response. A mistyped type or
// properties member is reported and ignored; the feature is dropped only
// when it isn't an object.
func decodeFeature(i int, raw json.RawMessage) (*Feature, []Diagnostic) {
	var diagnostics []Diagnostic

	report := func(format string, args ...any) {
		diagnostics = append(diagnostics, Diagnostic{
			Kind:    DiagnosticResponse,
			Message: fmt.Sprintf("feature %d: ", i) + fmt.Sprintf(format, args...),
		})
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		report("dropped null feature")

		return nil, diagnostics
	}

	var r rawFeature
	if err := json.Unmarshal(raw, &r); err != nil {
		report("dropped: %s", err)

		return nil, diagnostics
	}

	f := &Feature{GeoCentroid: r.GeoCentroid}

	if len(r.Type) > 0 {
		if err := json.Unmarshal(r.Type, &f.Type); err != nil {
			report("ignoring type: %s", err)
		}
	}

	if len(r.Properties) > 0 {
		if err := json.Unmarshal(r.Properties, &f.Properties); err != nil {
			f.Properties = nil

			report("ignoring properties: %s", err)
		}
	}

	return f, diagnostics
}

// ExtractFeatures interprets a geocoder response body. A "Feature" yields a
// single element, a "FeatureCollection" its features as returned. Features
// are decoded one by one: a malformed feature is reported in the returned
// diagnostics and never spoils its siblings. The error is reserved for a
// body that is not a feature response at all.
func ExtractFeatures(body []byte) ([]Feature, []Diagnostic, error) {
	var tagged struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(body, &tagged); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding: %w", ErrUnexpectedResponse, err)
	}

	var raws []json.RawMessage

	switch tagged.Type {
	case "Feature":
		raws = []json.RawMessage{body}
	case "FeatureCollection":
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}

		if err := json.Unmarshal(body, &fc); err != nil {
			return nil, nil, fmt.Errorf("%w: decoding feature collection: %w", ErrUnexpectedResponse, err)
		}

		raws = fc.Features
	default:
		return nil, nil, fmt.Errorf("%w: type %q", ErrUnexpectedResponse, tagged.Type)
	}

	var (
		features    []Feature
		diagnostics []Diagnostic
	)

	for i, raw := range raws {
		f, d := decodeFeature(i, raw)
		diagnostics = append(diagnostics, d...)

		if f != nil {
			features = append(features, *f)
		}
	}

	return features, diagnostics, nil
}
