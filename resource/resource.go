// Copyright 2026 Kiln ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resource describes the fields and ndarrays a module exports.
package resource

import "github.com/kiln-ml/kiln/internal/resource"

// Shape represents the dimensions of a field or ndarray.
type Shape = resource.Shape

// DataType represents runtime element type information.
type DataType = resource.DataType

// Supported element data types.
const (
	Float32 = resource.Float32
	Float64 = resource.Float64
	Int32   = resource.Int32
	Int64   = resource.Int64
	Uint8   = resource.Uint8
	Bool    = resource.Bool
)

// ElemKind is the closed set of element layouts.
type ElemKind = resource.ElemKind

// Element layouts.
const (
	Scalar = resource.Scalar
	Vector = resource.Vector
	Matrix = resource.Matrix
)

// Handle is an opaque identifier for a field's native backing allocation.
type Handle = resource.Handle

// Field is a globally allocated dense resource backed by a native handle.
type Field = resource.Field

// NDArray is an opaque device buffer descriptor.
type NDArray = resource.NDArray

// NewField creates a scalar field.
func NewField(dtype DataType, shape Shape) (*Field, error) {
	return resource.NewField(dtype, shape)
}

// NewMatrixField creates a field whose cells are rows x cols dense matrices.
func NewMatrixField(dtype DataType, shape Shape, rows, cols int) (*Field, error) {
	return resource.NewMatrixField(dtype, shape, rows, cols)
}

// NewNDArray creates a scalar ndarray.
func NewNDArray(dtype DataType, shape Shape) (*NDArray, error) {
	return resource.NewNDArray(dtype, shape)
}

// NewVectorNDArray creates an ndarray whose cells are n-component vectors.
func NewVectorNDArray(dtype DataType, shape Shape, n int) (*NDArray, error) {
	return resource.NewVectorNDArray(dtype, shape, n)
}

// NewMatrixNDArray creates an ndarray whose cells are rows x cols matrices.
func NewMatrixNDArray(dtype DataType, shape Shape, rows, cols int) (*NDArray, error) {
	return resource.NewMatrixNDArray(dtype, shape, rows, cols)
}
