// Package archive implements the .kiln container format: the on-disk module
// an accumulator dumps. A .kiln file holds a JSON metadata header describing
// the registered fields, ndarrays and kernel specializations, followed by an
// aligned code section with the compiled artifacts in registration order.
package archive

import "time"

// Format constants.
const (
	MagicBytes    = "KILN"
	FormatVersion = 1
	CodeAlignment = 64 // Align the code section to 64 bytes
	Extension     = ".kiln"
)

// Header is the JSON metadata header of a .kiln file.
type Header struct {
	FormatVersion int          `json:"format_version"`
	KilnVersion   string       `json:"kiln_version"`
	Arch          string       `json:"arch"`
	CreatedAt     time.Time    `json:"created_at"`
	Fields        []FieldMeta  `json:"fields"`
	NDArrays      []ArrayMeta  `json:"ndarrays"`
	Kernels       []KernelMeta `json:"kernels"`
}

// FieldMeta describes one registered field.
type FieldMeta struct {
	Name     string `json:"name"`
	Handle   uint64 `json:"handle"`
	IsScalar bool   `json:"is_scalar"`
	DType    string `json:"dtype"`
	Shape    []int  `json:"shape"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
}

// ArrayMeta describes one registered ndarray.
type ArrayMeta struct {
	Name     string `json:"name"`
	IsScalar bool   `json:"is_scalar"`
	DType    string `json:"dtype"`
	Shape    []int  `json:"shape"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
}

// KernelMeta describes one compiled kernel entry in the code section.
// Template specializations carry the generated key; plain kernels leave it
// empty. Offset is relative to the start of the code section.
type KernelMeta struct {
	Name      string `json:"name"`
	Key       string `json:"key,omitempty"`
	Template  bool   `json:"template"`
	Entry     string `json:"entry"`
	Signature string `json:"signature"`
	Offset    int64  `json:"offset"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"` // SHA-256 of the code bytes, hex
}
