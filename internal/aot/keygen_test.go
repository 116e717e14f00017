package aot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/resource"
)

func TestKeygen_Primitives(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "int", value: 42, want: "a=42/"},
		{name: "int64", value: int64(7), want: "a=7/"},
		{name: "negative int", value: -3, want: "a=-3/"},
		{name: "float", value: 1.5, want: "a=1.5/"},
		{name: "bool true", value: true, want: "a=true/"},
		{name: "bool false", value: false, want: "a=false/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := keygen(tt.value, "a", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, frag)
		})
	}
}

func TestKeygen_DistinctPrimitivesDistinctFragments(t *testing.T) {
	f1, err := keygen(1, "n", nil)
	require.NoError(t, err)
	f2, err := keygen(2, "n", nil)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)
}

func TestKeygen_ResourceIdentity(t *testing.T) {
	fieldA, err := resource.NewField(resource.Float32, resource.Shape{4, 4})
	require.NoError(t, err)
	fieldB, err := resource.NewField(resource.Float32, resource.Shape{4, 4})
	require.NoError(t, err)

	known := []namedResource{
		{name: "A", ref: fieldA},
		{name: "B", ref: fieldB},
	}

	// Structurally identical fields resolve by identity, not equality.
	fragA, err := keygen(fieldA, "x", known)
	require.NoError(t, err)
	fragB, err := keygen(fieldB, "x", known)
	require.NoError(t, err)
	assert.Equal(t, "x=A/", fragA)
	assert.Equal(t, "x=B/", fragB)
	assert.NotEqual(t, fragA, fragB)

	// Same resource twice under the same name is deterministic.
	again, err := keygen(fieldA, "x", known)
	require.NoError(t, err)
	assert.Equal(t, fragA, again)
}

func TestKeygen_UnknownResource(t *testing.T) {
	stray, err := resource.NewField(resource.Float32, resource.Shape{2})
	require.NoError(t, err)

	_, err = keygen(stray, "x", nil)
	require.ErrorIs(t, err, ErrUnsupportedArgumentKind)

	_, err = keygen("not a resource", "x", nil)
	require.ErrorIs(t, err, ErrUnsupportedArgumentKind)
}
