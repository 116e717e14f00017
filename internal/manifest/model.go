// Package manifest loads declarative .hcl build manifests: which fields,
// ndarrays and kernels make up a module, and which template instantiations to
// realize. The CLI feeds a parsed manifest to a backend to produce a .kiln
// module without writing any Go.
package manifest

import "github.com/zclconf/go-cty/cty"

// File is the decoded root of one manifest.
type File struct {
	Module         *ModuleBlock        `hcl:"module,block"`
	Fields         []*FieldBlock       `hcl:"field,block"`
	NDArrays       []*ArrayBlock       `hcl:"ndarray,block"`
	Kernels        []*KernelBlock      `hcl:"kernel,block"`
	Instantiations []*InstantiateBlock `hcl:"instantiate,block"`

	// dir is the directory of the manifest file, for resolving kernel
	// source paths. Empty when parsed from a raw buffer.
	dir string
}

// ModuleBlock selects the target arch and output naming.
type ModuleBlock struct {
	Arch string `hcl:"arch"`
	Name string `hcl:"name,optional"`
}

// FieldBlock declares a named field resource.
type FieldBlock struct {
	Name  string `hcl:"name,label"`
	DType string `hcl:"dtype"`
	Shape []int  `hcl:"shape"`
	Rows  int    `hcl:"rows,optional"`
	Cols  int    `hcl:"cols,optional"`
}

// ArrayBlock declares a named ndarray resource. Vector cells are declared
// with vector = N; matrix cells with rows/cols.
type ArrayBlock struct {
	Name   string `hcl:"name,label"`
	DType  string `hcl:"dtype"`
	Shape  []int  `hcl:"shape"`
	Vector int    `hcl:"vector,optional"`
	Rows   int    `hcl:"rows,optional"`
	Cols   int    `hcl:"cols,optional"`
}

// KernelBlock declares a kernel: its WGSL (inline or from a file), entry
// point, ordered argument schema, and the example ndarrays bound to any-array
// slots of non-template kernels.
type KernelBlock struct {
	Name     string      `hcl:"name,label"`
	Source   string      `hcl:"source,optional"` // path to a .wgsl file
	WGSL     string      `hcl:"wgsl,optional"`   // inline WGSL, overrides source
	Entry    string      `hcl:"entry,optional"`
	Args     []*ArgBlock `hcl:"arg,block"`
	Examples []string    `hcl:"examples,optional"` // ndarray names, schema order
}

// ArgBlock is one schema entry: kind is primitive, template or any_array.
type ArgBlock struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`
}

// InstantiateBlock realizes one specialization of a template kernel. Args map
// template argument names to literals (numbers, bools) or registered
// resource names (strings).
type InstantiateBlock struct {
	Kernel string    `hcl:"kernel,label"`
	Args   cty.Value `hcl:"args"`
}
