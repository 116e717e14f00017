package archive

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrAlreadyDumped      = errors.New("module builder already dumped")
	ErrOutOfBounds        = errors.New("kernel code extends beyond code section")
	ErrKernelNotFound     = errors.New("kernel entry not found")
)
