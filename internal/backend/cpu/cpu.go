// Package cpu implements a GPU-free packaging backend. It performs a
// structural check of the WGSL source instead of driver compilation, which
// makes it the default for CI and for hosts without a usable GPU; the
// produced .kiln modules are identical in layout to webgpu-built ones.
package cpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kiln-ml/kiln/internal/aot"
	"github.com/kiln-ml/kiln/internal/archive"
	"github.com/kiln-ml/kiln/internal/kernel"
)

// Arch is the backend architecture identifier.
const Arch = "cpu"

// Verify that Backend satisfies the packaging boundaries.
var (
	_ aot.Backend     = (*Backend)(nil)
	_ kernel.Compiler = (*Backend)(nil)
)

// Backend packages WGSL kernels without touching a device.
type Backend struct {
	artifacts map[string]*kernel.Artifact
	mu        sync.RWMutex
}

// New creates a new CPU packaging backend.
func New() *Backend {
	return &Backend{artifacts: make(map[string]*kernel.Artifact)}
}

// Arch returns the backend architecture identifier.
func (b *Backend) Arch() string { return Arch }

// Compiler returns the backend's kernel compiler.
func (b *Backend) Compiler() kernel.Compiler { return b }

// NewModuleBuilder returns a fresh .kiln accumulator for this arch.
func (b *Backend) NewModuleBuilder() aot.Builder {
	return archive.NewBuilder(Arch)
}

// EnsureCompiled validates the kernel source for the given concrete arguments
// and packages it, caching by argument-type signature.
func (b *Backend) EnsureCompiled(def *kernel.Def, args []any) (*kernel.Artifact, error) {
	sig, err := kernel.Signature(def, args)
	if err != nil {
		return nil, err
	}
	cacheKey := def.Name() + "|" + sig

	b.mu.RLock()
	if art, hit := b.artifacts[cacheKey]; hit {
		b.mu.RUnlock()
		return art, nil
	}
	b.mu.RUnlock()

	if !strings.Contains(def.Source(), "fn "+def.Entry()) {
		return nil, fmt.Errorf("cpu: kernel %q: entry point %q not found in source",
			def.Name(), def.Entry())
	}

	art := &kernel.Artifact{
		KernelName: def.Name(),
		Entry:      def.Entry(),
		Signature:  sig,
		Code:       []byte(def.Source()),
	}
	b.mu.Lock()
	b.artifacts[cacheKey] = art
	b.mu.Unlock()
	return art, nil
}
