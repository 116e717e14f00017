package aot

import (
	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

// Builder is the backend-specific accumulator a Module feeds. It is the sole
// authority on the on-disk layout produced by Dump; the packaging layer calls
// it in registration order and has no other visibility into the format.
type Builder interface {
	// Add records the single compiled artifact of a non-template kernel.
	Add(name string, art *kernel.Artifact) error

	// AddKernelTemplate records one compiled specialization of a template
	// kernel under its generated key.
	AddKernelTemplate(name, key string, art *kernel.Artifact) error

	// AddField records a named field descriptor.
	AddField(name string, handle resource.Handle, isScalar bool,
		dtype resource.DataType, shape resource.Shape, rows, cols int) error

	// AddNDArray records a named ndarray descriptor.
	AddNDArray(name string, isScalar bool,
		dtype resource.DataType, shape resource.Shape, rows, cols int) error

	// Dump serializes everything accumulated so far into backend-defined
	// container files under dir, named with the given filename prefix.
	Dump(dir, prefix string) error
}

// Backend selects the target architecture a module is built for and supplies
// the compiler and accumulator bound to it.
type Backend interface {
	// Arch returns the backend architecture identifier (e.g. "webgpu").
	Arch() string

	// Compiler returns the kernel compiler for this backend.
	Compiler() kernel.Compiler

	// NewModuleBuilder returns a fresh accumulator. Each Module owns its
	// accumulator exclusively for the Module's whole lifetime.
	NewModuleBuilder() Builder
}
