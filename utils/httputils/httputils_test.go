// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

// dummyRoundTripper is useful to simulate a response.
type dummyRoundTripper struct {
	response    *http.Response
	lastRequest *http.Request
}

func (d *dummyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req

	if d.response != nil {
		return d.response, nil
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

//////////////////////////////////
// Test LoggingRoundTripper

// TestLoggingRoundTripper verifies that the LoggingRoundTripper logs both the request and
// the response (including timing information).
func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	drt := &dummyRoundTripper{
		response: &http.Response{
			Status:     "200 OK",
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{"type":"FeatureCollection"}`)),
		},
	}

	lt := &LoggingRoundTripper{
		Transport: drt,
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/geocode.json?text=Kyiv&key=s3cr3t", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err = lt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	logContent := logBuffer.String()
	if !strings.Contains(logContent, "> GET /geocode.json?") {
		t.Errorf("log does not contain request info. Got: %s", logContent)
	}

	if strings.Contains(logContent, "s3cr3t") {
		t.Errorf("log leaks the API key. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "key=REDACTED") {
		t.Errorf("log does not contain the redacted key. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "< RESPONSE: [") {
		t.Errorf("log does not contain response header with timing info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "FeatureCollection") {
		t.Errorf("log does not contain response body. Got: %s", logContent)
	}

	// the real request still carries the key
	if got := drt.lastRequest.URL.Query().Get("key"); got != "s3cr3t" {
		t.Errorf("transport got key %q, want s3cr3t", got)
	}
}

func TestLoggingRoundTripperPreservesBody(t *testing.T) {
	var logBuffer bytes.Buffer

	drt := &dummyRoundTripper{}
	lt := &LoggingRoundTripper{Transport: drt, Writer: &logBuffer}

	req, err := http.NewRequest(http.MethodPost, "http://example.com/", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err := lt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	body, err := io.ReadAll(drt.lastRequest.Body)
	if err != nil {
		t.Fatalf("reading forwarded body: %v", err)
	}

	if string(body) != "payload" {
		t.Errorf("forwarded body = %q, want payload", body)
	}
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	drt := &dummyRoundTripper{}
	lt := &LoggingRoundTripper{Transport: drt}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err := lt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if drt.lastRequest != req {
		t.Error("request should be forwarded untouched when tracing is off")
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x/y?text=a&key=k", "http://x/y?key=REDACTED&text=a"},
		{"http://x/y?text=a", "http://x/y?text=a"},
		{"http://x/y", "http://x/y"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			if err != nil {
				t.Fatal(err)
			}

			if got := RedactURL(u).String(); got != tt.want {
				t.Errorf("RedactURL() = %q, want %q", got, tt.want)
			}

			if u.String() != tt.in {
				t.Errorf("RedactURL modified its input: %q", u.String())
			}
		})
	}
}

//////////////////////////////////
// Test AppendRequestHeadersRoundTripper

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &dummyRoundTripper{}

	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers: map[string]string{
			"User-Agent": "recode/test",
		},
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.org", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err = atr.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if dummy.lastRequest == nil {
		t.Fatalf("dummy transport did not receive any request")
	}

	if got := dummy.lastRequest.Header.Get("User-Agent"); got != "recode/test" {
		t.Errorf("expected header User-Agent to have value 'recode/test', but got '%s'", got)
	}

	if req.Header.Get("User-Agent") != "" {
		t.Error("the caller's request should not be modified")
	}
}
