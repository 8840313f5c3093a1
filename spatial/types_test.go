// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	kyiv := Point{Lat: 50.4501, Lng: 30.5234}
	lviv := Point{Lat: 49.8397, Lng: 24.0297}

	t.Run("zero on equal points", func(t *testing.T) {
		assert.Zero(t, DistanceKm(kyiv, kyiv))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, DistanceKm(kyiv, lviv), DistanceKm(lviv, kyiv), 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// Kyiv - Lviv is roughly 469 km.
		assert.InDelta(t, 469, DistanceKm(kyiv, lviv), 5)
	})

	t.Run("monotonic with separation", func(t *testing.T) {
		origin := Point{Lat: 50.0, Lng: 30.0}
		prev := 0.0

		for i := 1; i <= 20; i++ {
			d := DistanceKm(origin, Point{Lat: 50.0 + float64(i)*0.01, Lng: 30.0 + float64(i)*0.01})
			assert.Greater(t, d, prev)
			prev = d
		}
	})

	t.Run("one hundredth of a degree of latitude", func(t *testing.T) {
		d := DistanceKm(Point{Lat: 50.0, Lng: 30.0}, Point{Lat: 50.02, Lng: 30.0})
		assert.InDelta(t, 2.2, d, 0.05)
	})
}

func TestHaversineDistanceMeters(t *testing.T) {
	a := &Point{Lat: 50.0, Lng: 30.0}
	b := &Point{Lat: 50.0, Lng: 30.0001}

	d := a.HaversineDistance(b)
	assert.Greater(t, d, 5.0)
	assert.Less(t, d, 10.0)
}

func TestToRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, ToRadians(180), 1e-12)
	assert.InDelta(t, math.Pi/2, ToRadians(90), 1e-12)
	assert.Zero(t, ToRadians(0))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	points := []Point{
		{Lat: 50.4501, Lng: 30.5234},
		{Lat: -34.8822366, Lng: -56.1529602},
		{Lat: 0, Lng: 0},
		{Lat: 46.48253012345678, Lng: 30.72331098765432},
	}

	for _, p := range points {
		t.Run(p.Serialize(), func(t *testing.T) {
			got, ok := ParsePoint(p.Serialize())
			require.True(t, ok)
			assert.InDelta(t, p.Lat, got.Lat, 1e-12)
			assert.InDelta(t, p.Lng, got.Lng, 1e-12)
		})
	}
}

func TestSerialize(t *testing.T) {
	assert.Equal(t, "50.45, 30.5", Point{Lat: 50.45, Lng: 30.5}.Serialize())
}

func TestParsePointInvalid(t *testing.T) {
	for _, s := range []string{"", "50.1", "50.1, 30.2, 1", "abc, 30", "50, xyz"} {
		t.Run(s, func(t *testing.T) {
			_, ok := ParsePoint(s)
			assert.False(t, ok)
		})
	}
}

func TestCell(t *testing.T) {
	p := Point{Lat: 50.4501, Lng: 30.5234}

	c1, err := p.Cell(8)
	require.NoError(t, err)
	assert.True(t, c1.IsValid())
	assert.Equal(t, 8, c1.Resolution())

	c2, err := Point{Lat: 50.45011, Lng: 30.52341}.Cell(8)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	_, err = p.Cell(16)
	assert.Error(t, err)
}
