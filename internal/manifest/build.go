package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/kiln-ml/kiln/internal/aot"
	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

// Build registers everything the manifest declares against a fresh module on
// the given backend and returns the module, ready to be saved.
func Build(f *File, backend aot.Backend, opts ...aot.Option) (*aot.Module, error) {
	if backend.Arch() != f.Module.Arch {
		return nil, fmt.Errorf("manifest targets arch %q but backend is %q", f.Module.Arch, backend.Arch())
	}
	m := aot.Open(backend, opts...)

	resources := make(map[string]any)

	for _, fb := range f.Fields {
		fld, err := buildField(fb)
		if err != nil {
			return nil, err
		}
		if err := m.RegisterField(fb.Name, fld); err != nil {
			return nil, err
		}
		resources[fb.Name] = fld
	}

	ndarrays := make(map[string]*resource.NDArray)
	for _, ab := range f.NDArrays {
		arr, err := buildNDArray(ab)
		if err != nil {
			return nil, err
		}
		if err := m.RegisterNDArray(ab.Name, arr); err != nil {
			return nil, err
		}
		resources[ab.Name] = arr
		ndarrays[ab.Name] = arr
	}

	defs := make(map[string]*kernel.Def, len(f.Kernels))
	for _, kb := range f.Kernels {
		def, err := buildDef(kb, f.dir)
		if err != nil {
			return nil, err
		}
		defs[kb.Name] = def

		if def.NumOf(kernel.Template) > 0 {
			continue // realized by instantiate blocks below
		}
		examples := make([]*resource.NDArray, 0, len(kb.Examples))
		for _, name := range kb.Examples {
			arr, ok := ndarrays[name]
			if !ok {
				return nil, fmt.Errorf("kernel %q: example %q is not a declared ndarray", kb.Name, name)
			}
			examples = append(examples, arr)
		}
		if err := m.AddKernel(def, examples...); err != nil {
			return nil, err
		}
	}

	// Instantiate blocks for the same kernel share one session, in manifest
	// order.
	byKernel := make(map[string][]*InstantiateBlock)
	var order []string
	for _, ib := range f.Instantiations {
		if _, seen := byKernel[ib.Kernel]; !seen {
			order = append(order, ib.Kernel)
		}
		byKernel[ib.Kernel] = append(byKernel[ib.Kernel], ib)
	}
	for _, name := range order {
		def, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("instantiate block references undeclared kernel %q", name)
		}
		kt, err := m.OpenKernelTemplate(def)
		if err != nil {
			return nil, err
		}
		for _, ib := range byKernel[name] {
			args, err := convertArgs(ib.Args, resources)
			if err != nil {
				kt.Close()
				return nil, fmt.Errorf("instantiate %q: %w", name, err)
			}
			if _, err := kt.Instantiate(args); err != nil {
				kt.Close()
				return nil, err
			}
		}
		kt.Close()
	}

	return m, nil
}

func buildField(fb *FieldBlock) (*resource.Field, error) {
	dtype, ok := resource.ParseDataType(fb.DType)
	if !ok {
		return nil, fmt.Errorf("field %q: unknown dtype %q", fb.Name, fb.DType)
	}
	if fb.Rows > 0 || fb.Cols > 0 {
		return resource.NewMatrixField(dtype, fb.Shape, fb.Rows, fb.Cols)
	}
	return resource.NewField(dtype, fb.Shape)
}

func buildNDArray(ab *ArrayBlock) (*resource.NDArray, error) {
	dtype, ok := resource.ParseDataType(ab.DType)
	if !ok {
		return nil, fmt.Errorf("ndarray %q: unknown dtype %q", ab.Name, ab.DType)
	}
	switch {
	case ab.Vector > 0:
		return resource.NewVectorNDArray(dtype, ab.Shape, ab.Vector)
	case ab.Rows > 0 || ab.Cols > 0:
		return resource.NewMatrixNDArray(dtype, ab.Shape, ab.Rows, ab.Cols)
	default:
		return resource.NewNDArray(dtype, ab.Shape)
	}
}

func buildDef(kb *KernelBlock, dir string) (*kernel.Def, error) {
	source := kb.WGSL
	if source == "" {
		path := kb.Source
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		//nolint:gosec // G304: kernel source path comes from the user's manifest
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: %w", kb.Name, err)
		}
		source = string(data)
	}

	args := make([]kernel.Arg, 0, len(kb.Args))
	for _, a := range kb.Args {
		var kind kernel.ArgKind
		switch a.Kind {
		case "primitive":
			kind = kernel.Primitive
		case "template":
			kind = kernel.Template
		case "any_array":
			kind = kernel.AnyArray
		}
		args = append(args, kernel.Arg{Name: a.Name, Kind: kind})
	}
	return kernel.NewDef(kb.Name, source, kb.Entry, args)
}

// convertArgs turns the cty object of an instantiate block into template
// argument values: numbers and bools stay literal, strings name registered
// resources.
func convertArgs(v cty.Value, resources map[string]any) (aot.Args, error) {
	if v.IsNull() || (!v.Type().IsObjectType() && !v.Type().IsMapType()) {
		return nil, fmt.Errorf("args must be an object of template argument values")
	}
	args := make(aot.Args)
	for name, val := range v.AsValueMap() {
		converted, err := convertValue(val)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		if ref, isRef := converted.(resourceRef); isRef {
			res, ok := resources[string(ref)]
			if !ok {
				return nil, fmt.Errorf("argument %q: no resource registered under %q", name, string(ref))
			}
			converted = res
		}
		args[name] = converted
	}
	return args, nil
}

// resourceRef marks a string arg value as a resource name to resolve.
type resourceRef string

func convertValue(v cty.Value) (any, error) {
	switch {
	case v.Type() == cty.String:
		return resourceRef(v.AsString()), nil
	case v.Type() == cty.Bool:
		return v.True(), nil
	case v.Type() == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
	}
}
