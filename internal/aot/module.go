// Package aot builds ahead-of-time kernel modules: it registers fields,
// ndarrays and compiled kernels against a target backend, resolves template
// kernels into concrete specializations identified by deterministic keys, and
// hands the accumulated artifact set to the backend for serialization.
package aot

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

// record tracks one registered kernel and the specialization keys realized
// for it. The order of records is registration order; it only matters for
// diagnostics.
type record struct {
	name string
	def  *kernel.Def
	keys []string
}

// Module accumulates kernels and resource descriptors for one target backend
// and serializes them into a portable on-disk module.
//
// A Module is single-threaded: registration and instantiation calls must be
// serialized by the caller. Once saved, the Module is terminal; every further
// operation fails with ErrModuleSaved.
type Module struct {
	backend  Backend
	compiler kernel.Compiler
	builder  Builder

	fields   map[string]*resource.Field
	ndarrays map[string]*resource.NDArray
	ordered  []namedResource

	kernels      []*record
	openSessions int
	saved        bool

	log *slog.Logger
}

// Option configures a Module at open time.
type Option func(*Module)

// WithLogger sets the structured logger used for registration diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(m *Module) { m.log = log }
}

// Open creates a module builder targeting the given backend.
func Open(backend Backend, opts ...Option) *Module {
	m := &Module{
		backend:  backend,
		compiler: backend.Compiler(),
		builder:  backend.NewModuleBuilder(),
		fields:   make(map[string]*resource.Field),
		ndarrays: make(map[string]*resource.NDArray),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Arch returns the target backend architecture identifier.
func (m *Module) Arch() string { return m.backend.Arch() }

// RegisterField adds a named field to the module. The name must be unique
// across both fields and ndarrays.
func (m *Module) RegisterField(name string, f *resource.Field) error {
	if m.saved {
		return ErrModuleSaved
	}
	if err := m.checkName(name); err != nil {
		return err
	}
	m.fields[name] = f
	m.ordered = append(m.ordered, namedResource{name: name, ref: f})
	if err := m.builder.AddField(name, f.Handle(), f.IsScalar(), f.DType(), f.Shape(), f.Rows(), f.Cols()); err != nil {
		return fmt.Errorf("register field %q: %w", name, err)
	}
	m.log.Debug("registered field", "name", name, "dtype", f.DType().String(), "shape", []int(f.Shape()))
	return nil
}

// RegisterNDArray adds a named ndarray to the module. The name must be unique
// across both fields and ndarrays.
func (m *Module) RegisterNDArray(name string, a *resource.NDArray) error {
	if m.saved {
		return ErrModuleSaved
	}
	if err := m.checkName(name); err != nil {
		return err
	}
	m.ndarrays[name] = a
	m.ordered = append(m.ordered, namedResource{name: name, ref: a})
	if err := m.builder.AddNDArray(name, a.IsScalar(), a.DType(), a.Shape(), a.Rows(), a.Cols()); err != nil {
		return fmt.Errorf("register ndarray %q: %w", name, err)
	}
	m.log.Debug("registered ndarray", "name", name, "dtype", a.DType().String(), "shape", []int(a.Shape()))
	return nil
}

func (m *Module) checkName(name string) error {
	if _, dup := m.fields[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateResourceName, name)
	}
	if _, dup := m.ndarrays[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateResourceName, name)
	}
	return nil
}

// AddKernel compiles and registers a non-template kernel under its declared
// name. One example ndarray must be supplied per declared any-array argument,
// in schema order, so the compiler can infer buffer types and shapes.
func (m *Module) AddKernel(def *kernel.Def, examples ...*resource.NDArray) error {
	return m.AddKernelNamed(def.Name(), def, examples...)
}

// AddKernelNamed is AddKernel with an explicit module-visible name.
func (m *Module) AddKernelNamed(name string, def *kernel.Def, examples ...*resource.NDArray) error {
	if m.saved {
		return ErrModuleSaved
	}
	if def.NumOf(kernel.Template) != 0 {
		return fmt.Errorf("%w: kernel %q", ErrTemplateKernel, def.Name())
	}
	if want := def.NumOf(kernel.AnyArray); want != len(examples) {
		return fmt.Errorf("%w: kernel %q needs %d example ndarrays, got %d",
			ErrArgumentCountMismatch, def.Name(), want, len(examples))
	}

	injected := make([]any, 0, len(def.Args()))
	next := 0
	for _, a := range def.Args() {
		if a.Kind == kernel.AnyArray {
			injected = append(injected, examples[next])
			next++
		} else {
			// Primitive slots get a dummy value; only the argument type
			// matters for compilation.
			injected = append(injected, 0)
		}
	}

	art, err := m.ensureCompiled(def, injected)
	if err != nil {
		return err
	}
	if err := m.builder.Add(name, art); err != nil {
		return fmt.Errorf("add kernel %q: %w", name, err)
	}
	m.kernels = append(m.kernels, &record{name: name, def: def})
	m.log.Debug("added kernel", "name", name, "entry", def.Entry())
	return nil
}

// OpenKernelTemplate opens a session for instantiating a template kernel.
// The session must be closed before the module can be saved.
func (m *Module) OpenKernelTemplate(def *kernel.Def) (*KernelTemplate, error) {
	if m.saved {
		return nil, ErrModuleSaved
	}
	m.openSessions++
	return &KernelTemplate{module: m, def: def}, nil
}

// ensureCompiled delegates to the backend compiler, which caches by concrete
// argument-type signature. Compiler errors are fatal to the calling
// registration but leave already-registered state intact.
func (m *Module) ensureCompiled(def *kernel.Def, injected []any) (*kernel.Artifact, error) {
	art, err := m.compiler.EnsureCompiled(def, injected)
	if err != nil {
		return nil, fmt.Errorf("%w: kernel %q: %w", ErrCompilationFailed, def.Name(), err)
	}
	return art, nil
}

// Save serializes the module into backend-defined container files under dir,
// named with the given filename prefix. Save is terminal: the module accepts
// no further registrations, and a second Save fails with ErrModuleSaved.
func (m *Module) Save(dir, prefix string) error {
	if m.saved {
		return ErrModuleSaved
	}
	if m.openSessions > 0 {
		return fmt.Errorf("%w: %d session(s) must be closed before save", ErrSessionOpen, m.openSessions)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve module path %q: %w", dir, err)
	}
	m.saved = true
	if err := m.builder.Dump(filepath.ToSlash(abs), prefix); err != nil {
		return fmt.Errorf("save module: %w", err)
	}
	m.log.Info("module saved", "arch", m.backend.Arch(), "dir", abs, "prefix", prefix,
		"kernels", len(m.kernels), "fields", len(m.fields), "ndarrays", len(m.ndarrays))
	return nil
}
