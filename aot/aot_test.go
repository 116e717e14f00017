package aot_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/aot"
	"github.com/kiln-ml/kiln/backend/cpu"
	"github.com/kiln-ml/kiln/internal/archive"
	"github.com/kiln-ml/kiln/kernel"
	"github.com/kiln-ml/kiln/resource"
)

const wgsl = "@compute @workgroup_size(64) fn main() {}"

// TestPublicSurface exercises the exported API end to end on the cpu backend.
func TestPublicSurface(t *testing.T) {
	m := aot.Open(cpu.New())

	density, err := resource.NewField(resource.Float32, resource.Shape{64, 64})
	require.NoError(t, err)
	velocity, err := resource.NewMatrixField(resource.Float32, resource.Shape{64, 64}, 2, 1)
	require.NoError(t, err)
	require.NoError(t, m.RegisterField("density", density))
	require.NoError(t, m.RegisterField("velocity", velocity))

	positions, err := resource.NewVectorNDArray(resource.Float32, resource.Shape{1024}, 3)
	require.NoError(t, err)
	require.NoError(t, m.RegisterNDArray("positions", positions))

	advect, err := kernel.NewDef("advect", wgsl, "main", []kernel.Arg{
		{Name: "dt", Kind: kernel.Primitive},
		{Name: "buf", Kind: kernel.AnyArray},
	})
	require.NoError(t, err)
	require.NoError(t, m.AddKernel(advect, positions))

	clearDef, err := kernel.NewDef("clear", wgsl, "main", []kernel.Arg{
		{Name: "target", Kind: kernel.Template},
	})
	require.NoError(t, err)

	kt, err := m.OpenKernelTemplate(clearDef)
	require.NoError(t, err)
	keyD, err := kt.Instantiate(aot.Args{"target": density})
	require.NoError(t, err)
	keyV, err := kt.Instantiate(aot.Args{"target": velocity})
	require.NoError(t, err)
	kt.Close()

	assert.Equal(t, "target=density/", keyD)
	assert.Equal(t, "target=velocity/", keyV)

	dir := t.TempDir()
	require.NoError(t, m.Save(dir, "fluid"))
	require.ErrorIs(t, m.Save(dir, "fluid"), aot.ErrModuleSaved)

	mod, err := archive.Open(filepath.Join(dir, "fluid"+archive.Extension))
	require.NoError(t, err)
	assert.Equal(t, []string{"target=density/", "target=velocity/"}, mod.KernelKeys("clear"))
}
