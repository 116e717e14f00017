package archive

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

const kilnVersion = "0.1.0" // Current Kiln version

// Builder accumulates registered descriptors and compiled artifacts and
// serializes them into a single .kiln container file. Entries are written in
// registration order. A Builder dumps at most once.
type Builder struct {
	arch     string
	fields   []FieldMeta
	ndarrays []ArrayMeta
	kernels  []kernelEntry
	dumped   bool
}

type kernelEntry struct {
	meta KernelMeta
	code []byte
}

// NewBuilder creates an accumulator for the given backend architecture.
func NewBuilder(arch string) *Builder {
	return &Builder{arch: arch}
}

// Add records the single compiled artifact of a non-template kernel.
func (b *Builder) Add(name string, art *kernel.Artifact) error {
	if b.dumped {
		return ErrAlreadyDumped
	}
	b.kernels = append(b.kernels, kernelEntry{
		meta: KernelMeta{
			Name:      name,
			Entry:     art.Entry,
			Signature: art.Signature,
			Checksum:  ComputeChecksum(art.Code),
		},
		code: art.Code,
	})
	return nil
}

// AddKernelTemplate records one compiled specialization of a template kernel
// under its generated key.
func (b *Builder) AddKernelTemplate(name, key string, art *kernel.Artifact) error {
	if b.dumped {
		return ErrAlreadyDumped
	}
	b.kernels = append(b.kernels, kernelEntry{
		meta: KernelMeta{
			Name:      name,
			Key:       key,
			Template:  true,
			Entry:     art.Entry,
			Signature: art.Signature,
			Checksum:  ComputeChecksum(art.Code),
		},
		code: art.Code,
	})
	return nil
}

// AddField records a named field descriptor.
func (b *Builder) AddField(name string, handle resource.Handle, isScalar bool,
	dtype resource.DataType, shape resource.Shape, rows, cols int) error {
	if b.dumped {
		return ErrAlreadyDumped
	}
	b.fields = append(b.fields, FieldMeta{
		Name:     name,
		Handle:   uint64(handle),
		IsScalar: isScalar,
		DType:    dtype.String(),
		Shape:    shape.Clone(),
		Rows:     rows,
		Cols:     cols,
	})
	return nil
}

// AddNDArray records a named ndarray descriptor.
func (b *Builder) AddNDArray(name string, isScalar bool,
	dtype resource.DataType, shape resource.Shape, rows, cols int) error {
	if b.dumped {
		return ErrAlreadyDumped
	}
	b.ndarrays = append(b.ndarrays, ArrayMeta{
		Name:     name,
		IsScalar: isScalar,
		DType:    dtype.String(),
		Shape:    shape.Clone(),
		Rows:     rows,
		Cols:     cols,
	})
	return nil
}

// Dump writes the accumulated module to <dir>/<prefix>.kiln.
func (b *Builder) Dump(dir, prefix string) error {
	if b.dumped {
		return ErrAlreadyDumped
	}
	b.dumped = true

	header := Header{
		FormatVersion: FormatVersion,
		KilnVersion:   kilnVersion,
		Arch:          b.arch,
		CreatedAt:     time.Now().UTC(),
		Fields:        b.fields,
		NDArrays:      b.ndarrays,
		Kernels:       make([]KernelMeta, 0, len(b.kernels)),
	}

	var offset int64
	for _, e := range b.kernels {
		meta := e.meta
		meta.Offset = offset
		meta.Size = int64(len(e.code))
		header.Kernels = append(header.Kernels, meta)
		offset += meta.Size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	path := filepath.Join(dir, prefix+Extension)
	//nolint:gosec // G304: output path comes from the caller, which is expected for module export
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create module file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Pad so the code section starts on an aligned boundary.
	pos := int64(4+4+8) + int64(len(headerJSON))
	if padding := (CodeAlignment - (pos % CodeAlignment)) % CodeAlignment; padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for _, e := range b.kernels {
		if _, err := file.Write(e.code); err != nil {
			return fmt.Errorf("failed to write kernel %q: %w", e.meta.Name, err)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync module file: %w", err)
	}
	return nil
}
