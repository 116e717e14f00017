package aot

import (
	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

// Verify that the mocks implement the packaging boundaries.
var (
	_ Backend         = (*mockBackend)(nil)
	_ Builder         = (*mockBuilder)(nil)
	_ kernel.Compiler = (*mockCompiler)(nil)
)

// mockCompiler counts compilations and can be forced to fail.
type mockCompiler struct {
	calls int
	fail  error
}

func (c *mockCompiler) EnsureCompiled(def *kernel.Def, args []any) (*kernel.Artifact, error) {
	c.calls++
	if c.fail != nil {
		return nil, c.fail
	}
	sig, err := kernel.Signature(def, args)
	if err != nil {
		return nil, err
	}
	return &kernel.Artifact{
		KernelName: def.Name(),
		Entry:      def.Entry(),
		Signature:  sig,
		Code:       []byte(def.Source()),
	}, nil
}

type templateEntry struct {
	name string
	key  string
}

type dumpCall struct {
	dir    string
	prefix string
}

// mockBuilder records every accumulator call in order.
type mockBuilder struct {
	kernels   []string
	templates []templateEntry
	fields    []string
	ndarrays  []string
	dumps     []dumpCall
}

func (b *mockBuilder) Add(name string, _ *kernel.Artifact) error {
	b.kernels = append(b.kernels, name)
	return nil
}

func (b *mockBuilder) AddKernelTemplate(name, key string, _ *kernel.Artifact) error {
	b.templates = append(b.templates, templateEntry{name: name, key: key})
	return nil
}

func (b *mockBuilder) AddField(name string, _ resource.Handle, _ bool,
	_ resource.DataType, _ resource.Shape, _, _ int) error {
	b.fields = append(b.fields, name)
	return nil
}

func (b *mockBuilder) AddNDArray(name string, _ bool,
	_ resource.DataType, _ resource.Shape, _, _ int) error {
	b.ndarrays = append(b.ndarrays, name)
	return nil
}

func (b *mockBuilder) Dump(dir, prefix string) error {
	b.dumps = append(b.dumps, dumpCall{dir: dir, prefix: prefix})
	return nil
}

type mockBackend struct {
	compiler *mockCompiler
	builder  *mockBuilder
}

func newMockBackend() *mockBackend {
	return &mockBackend{compiler: &mockCompiler{}, builder: &mockBuilder{}}
}

func (b *mockBackend) Arch() string              { return "mock" }
func (b *mockBackend) Compiler() kernel.Compiler { return b.compiler }
func (b *mockBackend) NewModuleBuilder() Builder { return b.builder }

// testSource is a minimal WGSL kernel body for definitions under test.
const testSource = "@compute @workgroup_size(64) fn main() {}"

func mustDef(name string, args ...kernel.Arg) *kernel.Def {
	def, err := kernel.NewDef(name, testSource, "main", args)
	if err != nil {
		panic(err)
	}
	return def
}
