package aot

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/kernel"
)

// Args carries the named template argument values for one instantiation.
// Supply order is irrelevant; key generation always walks the kernel's
// declared schema order.
type Args map[string]any

// KernelTemplate is a session scoped to one template kernel and the module
// that opened it. Each Instantiate call compiles one specialization; the
// session performs no deduplication, so instantiating the same argument
// sequence twice compiles and registers twice.
type KernelTemplate struct {
	module *Module
	def    *kernel.Def
	closed bool
}

// Instantiate compiles the specialization selected by the given template
// argument values and registers it under the generated key, which is
// returned. Every declared template argument must be supplied exactly once.
func (kt *KernelTemplate) Instantiate(args Args) (string, error) {
	if kt.closed {
		return "", fmt.Errorf("kernel template %q: session closed", kt.def.Name())
	}
	if kt.module.saved {
		return "", ErrModuleSaved
	}

	declared := kt.def.TemplateNames()
	for _, name := range declared {
		if _, ok := args[name]; !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingTemplateArgument, name)
		}
	}
	if len(args) != len(declared) {
		names := make(map[string]struct{}, len(declared))
		for _, n := range declared {
			names[n] = struct{}{}
		}
		for supplied := range args {
			if _, ok := names[supplied]; !ok {
				return "", fmt.Errorf("%w: %q", ErrUnexpectedTemplateArgument, supplied)
			}
		}
	}

	injected := make([]any, 0, len(kt.def.Args()))
	key := ""
	for _, a := range kt.def.Args() {
		if a.Kind != kernel.Template {
			injected = append(injected, 0)
			continue
		}
		v := args[a.Name]
		frag, err := keygen(v, a.Name, kt.module.ordered)
		if err != nil {
			return "", fmt.Errorf("kernel %q: %w", kt.def.Name(), err)
		}
		key += frag
		injected = append(injected, v)
	}

	art, err := kt.module.ensureCompiled(kt.def, injected)
	if err != nil {
		return "", err
	}
	if err := kt.module.builder.AddKernelTemplate(kt.def.Name(), key, art); err != nil {
		return "", fmt.Errorf("add kernel template %q: %w", kt.def.Name(), err)
	}

	kt.module.kernels = append(kt.module.kernels, &record{
		name: kt.def.Name(),
		def:  kt.def,
		keys: []string{key},
	})
	kt.module.log.Debug("instantiated kernel template", "name", kt.def.Name(), "key", key)
	return key, nil
}

// Close ends the session. Closing is required before the owning module can be
// saved; it is idempotent and currently releases nothing, but future
// bookkeeping (deduplication, batch flush) hooks in here.
func (kt *KernelTemplate) Close() {
	if kt.closed {
		return
	}
	kt.closed = true
	kt.module.openSessions--
}
