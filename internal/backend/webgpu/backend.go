// Package webgpu implements the WebGPU backend for AOT kernel packaging.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Kernels are authored in WGSL. EnsureCompiled creates a real shader module
// on the device so compilation errors surface at packaging time; the portable
// artifact stored in the module is the validated WGSL itself, which the
// loading host compiles against its own device.
package webgpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/kiln-ml/kiln/internal/aot"
	"github.com/kiln-ml/kiln/internal/archive"
	"github.com/kiln-ml/kiln/internal/kernel"
)

// Arch is the backend architecture identifier.
const Arch = "webgpu"

// Verify that Backend satisfies the packaging boundaries.
var (
	_ aot.Backend     = (*Backend)(nil)
	_ kernel.Compiler = (*Backend)(nil)
)

// Backend compiles WGSL kernels through a WebGPU device and supplies .kiln
// accumulators for modules targeting the webgpu arch.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Compiled-artifact cache, keyed by kernel name + argument-type signature.
	artifacts map[string]*kernel.Artifact
	shaders   map[string]*wgpu.ShaderModule
	mu        sync.RWMutex
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		artifacts: make(map[string]*kernel.Artifact),
		shaders:   make(map[string]*wgpu.ShaderModule),
	}, nil
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Arch returns the backend architecture identifier.
func (b *Backend) Arch() string { return Arch }

// Compiler returns the backend's kernel compiler.
func (b *Backend) Compiler() kernel.Compiler { return b }

// NewModuleBuilder returns a fresh .kiln accumulator for this arch.
func (b *Backend) NewModuleBuilder() aot.Builder {
	return archive.NewBuilder(Arch)
}

// EnsureCompiled compiles the kernel's WGSL for the given concrete arguments,
// caching by argument-type signature. Cache hits return the previously
// compiled artifact.
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
		return nil, fmt.Errorf("webgpu: kernel %q: entry point %q not found in WGSL source",
			def.Name(), def.Entry())
	}

	shader, err := b.compileShader(cacheKey, def.Source())
	if err != nil {
		return nil, fmt.Errorf("webgpu: kernel %q: %w", def.Name(), err)
	}
	_ = shader // kept alive in the cache for the backend's lifetime

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

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) (shader *wgpu.ShaderModule, err error) {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader, nil
	}
	b.mu.RUnlock()

	// CreateShaderModuleWGSL panics on driver-level failures.
	defer func() {
		if r := recover(); r != nil {
			shader = nil
			err = fmt.Errorf("shader compilation failed: %v", r)
		}
	}()
	shader = b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader, nil
}

// Release frees the WebGPU device and all cached shader modules.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil
	b.artifacts = nil

	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
