// Copyright 2025 The Recode Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/recode-ua/recode/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
