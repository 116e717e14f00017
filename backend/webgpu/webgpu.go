// Copyright 2026 Kiln ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU packaging backend.
//
// Kernels are authored in WGSL and validated against a real WebGPU device at
// packaging time, so compilation errors surface while the module is built
// rather than when the host loads it.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	m := aot.Open(gpu)
package webgpu

import (
	internalwebgpu "github.com/kiln-ml/kiln/internal/backend/webgpu"

	"github.com/kiln-ml/kiln/aot"
)

// Backend is the WebGPU packaging backend.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements aot.Backend.
var _ aot.Backend = (*Backend)(nil)

// New creates a new WebGPU backend. Call Release when done to free the
// device. Returns an error if WebGPU initialization fails (e.g. no
// compatible GPU).
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system. Useful
// for graceful fallback to the cpu backend:
//
//	var backend aot.Backend
//	if webgpu.IsAvailable() {
//	    backend, _ = webgpu.New()
//	} else {
//	    backend = cpu.New()
//	}
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
