// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisicomGeocoder(t *testing.T) {
	var got *http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	}))
	defer srv.Close()

	g, err := NewVisicomGeocoder(&Options{APIKey: "k3y", BaseURL: srv.URL + "/data-api/5.0/", UserAgent: "recode/test"})
	require.NoError(t, err)

	body, err := g.Geocode(context.Background(), "вул. Шевченка, 12, Київ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "/data-api/5.0/ru/geocode.json", got.URL.Path)
	assert.Equal(t, "вул. Шевченка, 12, Київ", got.URL.Query().Get("text"))
	assert.Equal(t, "k3y", got.URL.Query().Get("key"))
	assert.Equal(t, "recode/test", got.Header.Get("User-Agent"))
}

func TestVisicomGeocoderLang(t *testing.T) {
	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g, err := NewVisicomGeocoder(&Options{APIKey: "k", BaseURL: srv.URL, Lang: "uk"})
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "/uk/geocode.json", path)
}

func TestVisicomGeocoderHTTPErrors(t *testing.T) {
	tests := []struct {
		status   int
		wantType ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusInternalServerError, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			g, err := NewVisicomGeocoder(&Options{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = g.Geocode(context.Background(), "x")

			var geoErr *GeocodingError
			require.ErrorAs(t, err, &geoErr)
			assert.Equal(t, tt.wantType, geoErr.Type)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestVisicomGeocoderTimeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g, err := NewVisicomGeocoder(&Options{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err))
}

func TestVisicomGeocoderMissingKey(t *testing.T) {
	_, err := NewVisicomGeocoder(&Options{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewVisicomGeocoder(nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
