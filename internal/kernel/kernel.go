// Package kernel defines compiled-kernel records: the argument schema a
// kernel declares, the compiler boundary that turns a kernel definition plus
// concrete argument values into a compiled artifact, and the artifact itself.
package kernel

import "fmt"

// ArgKind tags one position in a kernel's argument schema.
type ArgKind int

// Argument kinds.
const (
	// Primitive arguments (int/float/bool) pass through at launch time and
	// never produce a specialization.
	Primitive ArgKind = iota
	// Template arguments create one compiled specialization per distinct
	// value.
	Template
	// AnyArray arguments are opaque device buffers whose type and shape the
	// compiler infers from a caller-supplied example.
	AnyArray
)

// String returns a human-readable kind name.
func (k ArgKind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Template:
		return "template"
	case AnyArray:
		return "any_array"
	default:
		return "unknown"
	}
}

// Arg is one entry in a kernel's declared argument schema.
// Order within the schema is fixed at definition time.
type Arg struct {
	Name string
	Kind ArgKind
}

// Def is a user-authored kernel definition: a stable name, the device source
// it compiles from, its entry point, and the ordered argument schema.
type Def struct {
	name   string
	source string
	entry  string
	args   []Arg
}

// NewDef creates a kernel definition. Argument names must be unique and the
// schema order given here is the order compilation and key generation walk.
func NewDef(name, source, entry string, args []Arg) (*Def, error) {
	if name == "" {
		return nil, fmt.Errorf("kernel name must not be empty")
	}
	if source == "" {
		return nil, fmt.Errorf("kernel %q: source must not be empty", name)
	}
	if entry == "" {
		entry = "main"
	}
	seen := make(map[string]struct{}, len(args))
	for i, a := range args {
		if a.Name == "" {
			return nil, fmt.Errorf("kernel %q: argument %d has no name", name, i)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("kernel %q: duplicate argument name %q", name, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return &Def{name: name, source: source, entry: entry, args: args}, nil
}

// Name returns the kernel's declared identifier.
func (d *Def) Name() string { return d.name }

// Source returns the device source text.
func (d *Def) Source() string { return d.source }

// Entry returns the entry point name.
func (d *Def) Entry() string { return d.entry }

// Args returns the declared argument schema in declaration order.
// The returned slice must not be mutated.
func (d *Def) Args() []Arg { return d.args }

// NumOf counts schema entries of the given kind.
func (d *Def) NumOf(kind ArgKind) int {
	n := 0
	for _, a := range d.args {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// TemplateNames returns the names of Template-annotated arguments in
// declaration order.
func (d *Def) TemplateNames() []string {
	var names []string
	for _, a := range d.args {
		if a.Kind == Template {
			names = append(names, a.Name)
		}
	}
	return names
}
