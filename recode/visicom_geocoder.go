// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/recode-ua/recode/utils/httputils"
)

// ErrMissingAPIKey is returned when no Visicom key was configured.
var ErrMissingAPIKey = errors.New("missing Visicom API key")

// maxResponseSize caps the body read from the geocoder.
const maxResponseSize = 16 << 20

// VisicomGeocoder queries the Visicom Data API geocode endpoint.
type VisicomGeocoder struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewVisicomGeocoder creates a geocoder for the given options.
func NewVisicomGeocoder(options *Options) (*VisicomGeocoder, error) {
	opts := options.WithDefaults()
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var httpLogWriter io.Writer
	if opts.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  opts.EnableHTTPBodyTrace,
		Transport: transport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": opts.UserAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	return &VisicomGeocoder{
		apiKey:   opts.APIKey,
		endpoint: fmt.Sprintf("%s/%s/geocode.json", strings.TrimRight(opts.BaseURL, "/"), opts.Lang),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: headerTransport,
		},
	}, nil
}

// Geocode implements Geocoder.
func (g *VisicomGeocoder) Geocode(ctx context.Context, address string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", address)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	return body, nil
}
