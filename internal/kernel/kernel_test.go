package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/resource"
)

const src = "@compute @workgroup_size(64) fn main() {}"

func TestNewDef_Validation(t *testing.T) {
	tests := []struct {
		name    string
		defName string
		source  string
		args    []Arg
		wantErr bool
	}{
		{name: "valid", defName: "k", source: src},
		{name: "empty name", defName: "", source: src, wantErr: true},
		{name: "empty source", defName: "k", source: "", wantErr: true},
		{
			name:    "duplicate arg names",
			defName: "k",
			source:  src,
			args:    []Arg{{Name: "a", Kind: Template}, {Name: "a", Kind: Primitive}},
			wantErr: true,
		},
		{
			name:    "unnamed arg",
			defName: "k",
			source:  src,
			args:    []Arg{{Kind: Primitive}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDef(tt.defName, tt.source, "main", tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewDef_DefaultEntry(t *testing.T) {
	def, err := NewDef("k", src, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "main", def.Entry())
}

func TestDef_SchemaQueries(t *testing.T) {
	def, err := NewDef("k", src, "main", []Arg{
		{Name: "dt", Kind: Primitive},
		{Name: "fld", Kind: Template},
		{Name: "buf", Kind: AnyArray},
		{Name: "other", Kind: Template},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, def.NumOf(Primitive))
	assert.Equal(t, 2, def.NumOf(Template))
	assert.Equal(t, 1, def.NumOf(AnyArray))
	assert.Equal(t, []string{"fld", "other"}, def.TemplateNames())
}

func TestSignature(t *testing.T) {
	def, err := NewDef("k", src, "main", []Arg{
		{Name: "n", Kind: Primitive},
		{Name: "buf", Kind: AnyArray},
	})
	require.NoError(t, err)

	arr, err := resource.NewVectorNDArray(resource.Float32, resource.Shape{128}, 3)
	require.NoError(t, err)

	sig, err := Signature(def, []any{0, arr})
	require.NoError(t, err)
	assert.Equal(t, "i;ndarray:float32:vector:1x3:1d;", sig)

	// Same argument types, same signature.
	arr2, err := resource.NewVectorNDArray(resource.Float32, resource.Shape{512}, 3)
	require.NoError(t, err)
	sig2, err := Signature(def, []any{7, arr2})
	require.NoError(t, err)
	assert.Equal(t, sig, sig2)

	// Different element layout, different signature.
	scalarArr, err := resource.NewNDArray(resource.Float32, resource.Shape{128})
	require.NoError(t, err)
	sig3, err := Signature(def, []any{0, scalarArr})
	require.NoError(t, err)
	assert.NotEqual(t, sig, sig3)
}

func TestSignature_Errors(t *testing.T) {
	def, err := NewDef("k", src, "main", []Arg{{Name: "n", Kind: Primitive}})
	require.NoError(t, err)

	_, err = Signature(def, nil)
	require.Error(t, err)

	_, err = Signature(def, []any{struct{}{}})
	require.Error(t, err)
}
