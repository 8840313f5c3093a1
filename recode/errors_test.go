// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package recode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"rate limit error type", &GeocodingError{Type: ErrorTypeRateLimit, Message: "slow down"}, true},
		{"wrapped rate limit error", fmt.Errorf("entry 3: %w", &GeocodingError{Type: ErrorTypeRateLimit}), true},
		{"message contains rate limit", errors.New("rate limit exceeded"), true},
		{"message contains too many requests", errors.New("Too Many Requests"), true},
		{"message contains 429", errors.New("visicom returned status 429"), true},
		{"other error type", &GeocodingError{Type: ErrorTypeNotFound, Message: "rate limit"}, false},
		{"unrelated error", errors.New("some other error"), false},
	}, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"quota error type", &GeocodingError{Type: ErrorTypeQuotaExceeded}, true},
		{"message contains quota exceeded", errors.New("daily quota exceeded"), true},
		{"message contains limit exceeded", errors.New("request limit exceeded"), true},
		{"other error type", &GeocodingError{Type: ErrorTypeTimeout}, false},
		{"unrelated error", errors.New("boom"), false},
	}, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{"timeout error type", &GeocodingError{Type: ErrorTypeTimeout}, true},
		{"message contains timeout", errors.New("i/o timeout"), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"other error type", &GeocodingError{Type: ErrorTypeNetworkError, Message: "timeout"}, false},
		{"unrelated error", errors.New("boom"), false},
	}, IsTimeoutError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusUnauthorized, ErrorTypeQuotaExceeded},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadRequest, ErrorTypeInvalidRequest},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusServiceUnavailable, ErrorTypeNetworkError},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusGatewayTimeout, ErrorTypeNetworkError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status, "")
			if err.Type != tt.want {
				t.Errorf("ClassifyHTTPError(%d).Type = %s, want %s", tt.status, err.Type, tt.want)
			}

			if err.Err != nil {
				t.Errorf("ClassifyHTTPError(%d).Err = %v, want nil", tt.status, err.Err)
			}
		})
	}
}

func TestClassifyHTTPErrorBody(t *testing.T) {
	err := ClassifyHTTPError(http.StatusBadRequest, "  {\"error\":\"bad key\"}\n")
	if got, want := err.Error(), `invalid request: {"error":"bad key"}`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	long := ClassifyHTTPError(http.StatusInternalServerError, strings.Repeat("x", 1000))
	if got := len(long.Err.Error()); got != 256+len("…") {
		t.Errorf("truncated body length = %d, want %d", got, 256+len("…"))
	}
}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"cancelled", fmt.Errorf("get: %w", context.Canceled), ErrorTypeUnknown},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTransportError(tt.err)
			if got.Type != tt.want {
				t.Errorf("classifyTransportError().Type = %s, want %s", got.Type, tt.want)
			}

			if !errors.Is(got, tt.err) {
				t.Errorf("classifyTransportError() does not wrap %v", tt.err)
			}
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	if got := ErrorTypeQuotaExceeded.String(); got != "quota_exceeded" {
		t.Errorf("String() = %q", got)
	}

	if got := ErrorType(42).String(); got != "ErrorType(42)" {
		t.Errorf("String() = %q", got)
	}
}
