// Copyright 2025 The Recode Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// DefaultThresholdKm is the distance under which two coordinates are
// considered the same place.
const DefaultThresholdKm = 1.0

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Serialize renders the point as "lat, long" using the shortest
// representation that parses back to the same values.
func (p Point) Serialize() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// ParsePoint parses the output of Serialize.
func ParsePoint(s string) (*Point, bool) {
	segments := strings.Split(s, ",")
	if len(segments) != 2 {
		return nil, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(segments[0]), 64)
	if err != nil {
		return nil, false
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(segments[1]), 64)
	if err != nil {
		return nil, false
	}

	return &Point{Lat: lat, Lng: lng}, true
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := ToRadians(p.Lat)
	lat2 := ToRadians(other.Lat)
	dLat := ToRadians(other.Lat - p.Lat)
	dLng := ToRadians(other.Lng - p.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// DistanceKm is HaversineDistance expressed in kilometers.
func DistanceKm(a, b Point) float64 {
	return a.HaversineDistance(&b) / 1000
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("spatial: converting %s to h3 cell at res %d: %w", p, res, err)
	}

	return cell, nil
}
