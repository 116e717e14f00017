package archive

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// File is a parsed .kiln module, fully loaded into memory.
type File struct {
	Header Header

	code []byte // code section
}

// Open reads and validates a .kiln module file.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: module path comes from user input, which is expected for loading
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open module file: %w", err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerSize uint64
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	// Skip padding up to the aligned code section.
	pos := int64(4+4+8) + int64(headerSize)
	if padding := (CodeAlignment - (pos % CodeAlignment)) % CodeAlignment; padding > 0 {
		if _, err := f.Seek(padding, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("failed to seek past padding: %w", err)
		}
	}

	code, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read code section: %w", err)
	}

	file := &File{Header: header, code: code}
	for _, k := range header.Kernels {
		blob, err := file.codeAt(k.Offset, k.Size)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: %w", k.Name, err)
		}
		if err := ValidateChecksum(ComputeChecksum(blob), k.Checksum); err != nil {
			return nil, fmt.Errorf("kernel %q: %w", k.Name, err)
		}
	}
	return file, nil
}

func (f *File) codeAt(offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > int64(len(f.code)) {
		return nil, ErrOutOfBounds
	}
	return f.code[offset : offset+size], nil
}

// KernelCode returns the compiled code of the kernel entry registered under
// the given name and key (empty key for non-template kernels).
func (f *File) KernelCode(name, key string) ([]byte, error) {
	for _, k := range f.Header.Kernels {
		if k.Name == name && k.Key == key {
			return f.codeAt(k.Offset, k.Size)
		}
	}
	return nil, fmt.Errorf("%w: name %q key %q", ErrKernelNotFound, name, key)
}

// KernelKeys returns the generated specialization keys registered for the
// given template kernel name, in registration order.
func (f *File) KernelKeys(name string) []string {
	var keys []string
	for _, k := range f.Header.Kernels {
		if k.Name == name && k.Template {
			keys = append(keys, k.Key)
		}
	}
	return keys
}
