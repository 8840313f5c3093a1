// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderKeyValues(t *testing.T) {
	out := renderKeyValues([][2]string{
		{"responses", "1,234"},
		{"oldest", "-"},
	})

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "responses")
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(lines[1], " │"), "1,234"))
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(lines[2], " │"), "    -"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(nil))

	ts := time.Date(2025, 3, 1, 10, 30, 0, 0, time.Local)
	assert.Equal(t, "2025-03-01 10:30:00", formatTime(&ts))
}
