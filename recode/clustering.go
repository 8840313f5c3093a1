// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/recode-ua/recode/spatial"
)

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// centroid extracts the coordinate of a feature's geo_centroid.
func (f *Feature) centroid() (*spatial.Point, error) {
	raw := bytes.TrimSpace(f.GeoCentroid)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrMissingGeometry
	}

	var g geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
	}

	if g.Type != "Point" {
		return nil, fmt.Errorf("%w: unexpected geo_centroid type %q", ErrInvalidGeometry, g.Type)
	}

	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("%w: point coordinates: %w", ErrInvalidGeometry, err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("%w: point with %d coordinates", ErrInvalidGeometry, len(coords))
	}

	// GeoJSON order is [long, lat].
	return &spatial.Point{Lat: coords[1], Lng: coords[0]}, nil
}

// ClusterCoordinates groups the feature centroids into clusters of points
// within thresholdKm of the cluster's first member, and returns those first
// members in discovery order. Results come sorted by relevance, so index 0
// is the best match. Features without a usable centroid are reported and
// skipped. It returns nil when no feature has a usable centroid.
func ClusterCoordinates(features []Feature, thresholdKm float64) ([]spatial.Point, []Diagnostic) {
	var (
		representatives []spatial.Point
		diagnostics     []Diagnostic
	)

	for i := range features {
		p, err := features[i].centroid()
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:    DiagnosticGeometry,
				Message: fmt.Sprintf("feature %d: %s", i, err),
			})

			continue
		}

		clusterFound := false

		for _, rep := range representatives {
			if spatial.DistanceKm(*p, rep) <= thresholdKm {
				clusterFound = true

				break
			}
		}

		if !clusterFound {
			representatives = append(representatives, *p)
		}
	}

	return representatives, diagnostics
}
