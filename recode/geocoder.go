// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import "context"

// Geocoder resolves a free text address into the raw JSON body returned by
// the geocoding service.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]byte, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, address string) ([]byte, error)

func (f GeocoderFunc) Geocode(ctx context.Context, address string) ([]byte, error) {
	return f(ctx, address)
}
