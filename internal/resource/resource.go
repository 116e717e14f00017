package resource

import (
	"fmt"
	"sync/atomic"
)

// ElemKind is the closed set of element layouts a resource can have.
// The layout is resolved once at construction and never re-inspected.
type ElemKind int

// Element layouts. Vector cells carry a column count only; matrix cells carry
// row and column counts.
const (
	Scalar ElemKind = iota
	Vector
	Matrix
)

// String returns a human-readable layout name.
func (k ElemKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case Matrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Handle is an opaque identifier for a field's native backing allocation.
// Handles are stable for the lifetime of the process and never reused.
type Handle uint64

var nextHandle atomic.Uint64

func newHandle() Handle {
	return Handle(nextHandle.Add(1))
}

// Field is a globally allocated dense resource backed by a native handle.
// Fields are either scalar-shaped or carry a small dense matrix per cell.
type Field struct {
	dtype  DataType
	shape  Shape
	kind   ElemKind
	rows   int
	cols   int
	handle Handle
}

// NewField creates a scalar field. Rows and columns default to 1x1.
func NewField(dtype DataType, shape Shape) (*Field, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field shape: %w", err)
	}
	return &Field{
		dtype:  dtype,
		shape:  shape.Clone(),
		kind:   Scalar,
		rows:   1,
		cols:   1,
		handle: newHandle(),
	}, nil
}

// NewMatrixField creates a field whose cells are rows x cols dense matrices.
func NewMatrixField(dtype DataType, shape Shape, rows, cols int) (*Field, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field shape: %w", err)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid matrix dimensions %dx%d (must be > 0)", rows, cols)
	}
	return &Field{
		dtype:  dtype,
		shape:  shape.Clone(),
		kind:   Matrix,
		rows:   rows,
		cols:   cols,
		handle: newHandle(),
	}, nil
}

// DType returns the element data type.
func (f *Field) DType() DataType { return f.dtype }

// Shape returns the field's shape.
func (f *Field) Shape() Shape { return f.shape }

// Kind returns the element layout.
func (f *Field) Kind() ElemKind { return f.kind }

// Rows returns the per-cell row count (1 for scalar fields).
func (f *Field) Rows() int { return f.rows }

// Cols returns the per-cell column count (1 for scalar fields).
func (f *Field) Cols() int { return f.cols }

// Handle returns the opaque native backing handle.
func (f *Field) Handle() Handle { return f.handle }

// IsScalar reports whether the field has scalar cells.
func (f *Field) IsScalar() bool { return f.kind == Scalar }

// NDArray is an opaque device buffer without a global backing handle.
// Its type and shape are used to let the compiler infer kernel signatures.
type NDArray struct {
	dtype DataType
	shape Shape
	kind  ElemKind
	rows  int
	cols  int
}

// NewNDArray creates a scalar ndarray. Rows and columns default to 1x1.
func NewNDArray(dtype DataType, shape Shape) (*NDArray, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ndarray shape: %w", err)
	}
	return &NDArray{dtype: dtype, shape: shape.Clone(), kind: Scalar, rows: 1, cols: 1}, nil
}

// NewVectorNDArray creates an ndarray whose cells are n-component vectors.
func NewVectorNDArray(dtype DataType, shape Shape, n int) (*NDArray, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ndarray shape: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid vector size %d (must be > 0)", n)
	}
	return &NDArray{dtype: dtype, shape: shape.Clone(), kind: Vector, rows: 1, cols: n}, nil
}

// NewMatrixNDArray creates an ndarray whose cells are rows x cols matrices.
func NewMatrixNDArray(dtype DataType, shape Shape, rows, cols int) (*NDArray, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ndarray shape: %w", err)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid matrix dimensions %dx%d (must be > 0)", rows, cols)
	}
	return &NDArray{dtype: dtype, shape: shape.Clone(), kind: Matrix, rows: rows, cols: cols}, nil
}

// DType returns the element data type.
func (a *NDArray) DType() DataType { return a.dtype }

// Shape returns the ndarray's shape.
func (a *NDArray) Shape() Shape { return a.shape }

// Kind returns the element layout.
func (a *NDArray) Kind() ElemKind { return a.kind }

// Rows returns the per-cell row count.
func (a *NDArray) Rows() int { return a.rows }

// Cols returns the per-cell column count.
func (a *NDArray) Cols() int { return a.cols }

// IsScalar reports whether the ndarray has scalar cells.
func (a *NDArray) IsScalar() bool { return a.kind == Scalar }
