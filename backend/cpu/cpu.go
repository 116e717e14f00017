// Copyright 2026 Kiln ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the GPU-free packaging backend. It validates kernel
// source structurally instead of compiling on a device, making it the default
// for CI and hosts without a usable GPU.
package cpu

import (
	internalcpu "github.com/kiln-ml/kiln/internal/backend/cpu"

	"github.com/kiln-ml/kiln/aot"
)

// Backend is the CPU packaging backend.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements aot.Backend.
var _ aot.Backend = (*Backend)(nil)

// New creates a new CPU packaging backend.
func New() *Backend {
	return internalcpu.New()
}
