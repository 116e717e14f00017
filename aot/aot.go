// Copyright 2026 Kiln ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package aot builds ahead-of-time kernel modules.
//
// A module collects compiled kernels and the fields/ndarrays they operate on
// for one target backend, then serializes everything into a portable .kiln
// file that a host program loads without the authoring environment.
//
// Example:
//
//	backend := cpu.New()
//	m := aot.Open(backend)
//
//	m.RegisterField("density", density)
//	m.AddKernel(advect)
//
//	kt, _ := m.OpenKernelTemplate(copyTmpl)
//	kt.Instantiate(aot.Args{"src": density})
//	kt.Close()
//
//	m.Save("/path/to/module", "fluid")
package aot

import "github.com/kiln-ml/kiln/internal/aot"

// Module accumulates kernels and resource descriptors for one target backend.
type Module = aot.Module

// KernelTemplate is a session for instantiating one template kernel.
type KernelTemplate = aot.KernelTemplate

// Args carries named template argument values for one instantiation.
type Args = aot.Args

// Backend selects the target architecture and supplies compiler and
// accumulator.
type Backend = aot.Backend

// Builder is the backend-specific accumulator boundary.
type Builder = aot.Builder

// Option configures a Module at open time.
type Option = aot.Option

// Errors surfaced by registration, instantiation and save operations.
var (
	ErrUnsupportedArgumentKind    = aot.ErrUnsupportedArgumentKind
	ErrDuplicateResourceName      = aot.ErrDuplicateResourceName
	ErrArgumentCountMismatch      = aot.ErrArgumentCountMismatch
	ErrTemplateKernel             = aot.ErrTemplateKernel
	ErrMissingTemplateArgument    = aot.ErrMissingTemplateArgument
	ErrUnexpectedTemplateArgument = aot.ErrUnexpectedTemplateArgument
	ErrCompilationFailed          = aot.ErrCompilationFailed
	ErrModuleSaved                = aot.ErrModuleSaved
	ErrSessionOpen                = aot.ErrSessionOpen
)

// Open creates a module builder targeting the given backend.
func Open(backend Backend, opts ...Option) *Module {
	return aot.Open(backend, opts...)
}

// WithLogger sets the structured logger used for registration diagnostics.
var WithLogger = aot.WithLogger
