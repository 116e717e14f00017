package aot

import "errors"

// Registration and instantiation errors.
var (
	ErrUnsupportedArgumentKind    = errors.New("template argument must be an int/float/bool or a resource registered with this module")
	ErrDuplicateResourceName      = errors.New("resource name already registered")
	ErrArgumentCountMismatch      = errors.New("example buffer count does not match declared any-array count")
	ErrTemplateKernel             = errors.New("kernel declares template arguments; use OpenKernelTemplate")
	ErrMissingTemplateArgument    = errors.New("missing template argument")
	ErrUnexpectedTemplateArgument = errors.New("unexpected template argument")
	ErrCompilationFailed          = errors.New("kernel compilation failed")
	ErrModuleSaved                = errors.New("module already saved")
	ErrSessionOpen                = errors.New("kernel template session still open")
)
