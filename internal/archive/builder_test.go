package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiln-ml/kiln/internal/kernel"
	"github.com/kiln-ml/kiln/internal/resource"
)

func testArtifact(name, code string) *kernel.Artifact {
	return &kernel.Artifact{
		KernelName: name,
		Entry:      "main",
		Signature:  "i;",
		Code:       []byte(code),
	}
}

// TestDumpAndOpen verifies a full write/read round-trip of the container.
func TestDumpAndOpen(t *testing.T) {
	b := NewBuilder("cpu")

	if err := b.AddField("density", resource.Handle(1), true, resource.Float32, resource.Shape{64, 64}, 1, 1); err != nil {
		t.Fatalf("AddField failed: %v", err)
	}
	if err := b.AddNDArray("positions", false, resource.Float32, resource.Shape{1024}, 1, 3); err != nil {
		t.Fatalf("AddNDArray failed: %v", err)
	}
	if err := b.Add("advect", testArtifact("advect", "code-advect")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := b.AddKernelTemplate("scale", "a=A/", testArtifact("scale", "code-scale-A")); err != nil {
		t.Fatalf("AddKernelTemplate failed: %v", err)
	}
	if err := b.AddKernelTemplate("scale", "a=B/", testArtifact("scale", "code-scale-B")); err != nil {
		t.Fatalf("AddKernelTemplate failed: %v", err)
	}

	dir := t.TempDir()
	if err := b.Dump(dir, "fluid"); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	f, err := Open(filepath.Join(dir, "fluid"+Extension))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if f.Header.Arch != "cpu" {
		t.Errorf("arch = %q, want %q", f.Header.Arch, "cpu")
	}
	if f.Header.FormatVersion != FormatVersion {
		t.Errorf("format version = %d, want %d", f.Header.FormatVersion, FormatVersion)
	}
	if len(f.Header.Fields) != 1 || f.Header.Fields[0].Name != "density" {
		t.Errorf("unexpected fields: %+v", f.Header.Fields)
	}
	if len(f.Header.NDArrays) != 1 || f.Header.NDArrays[0].Cols != 3 {
		t.Errorf("unexpected ndarrays: %+v", f.Header.NDArrays)
	}
	if len(f.Header.Kernels) != 3 {
		t.Fatalf("kernel entries = %d, want 3", len(f.Header.Kernels))
	}

	code, err := f.KernelCode("advect", "")
	if err != nil {
		t.Fatalf("KernelCode failed: %v", err)
	}
	if string(code) != "code-advect" {
		t.Errorf("advect code = %q", code)
	}

	code, err = f.KernelCode("scale", "a=B/")
	if err != nil {
		t.Fatalf("KernelCode failed: %v", err)
	}
	if string(code) != "code-scale-B" {
		t.Errorf("scale a=B/ code = %q", code)
	}

	keys := f.KernelKeys("scale")
	if len(keys) != 2 || keys[0] != "a=A/" || keys[1] != "a=B/" {
		t.Errorf("scale keys = %v", keys)
	}

	if _, err := f.KernelCode("missing", ""); !errors.Is(err, ErrKernelNotFound) {
		t.Errorf("expected ErrKernelNotFound, got %v", err)
	}
}

// TestDumpTwice verifies a builder serializes at most once.
func TestDumpTwice(t *testing.T) {
	b := NewBuilder("cpu")
	dir := t.TempDir()

	if err := b.Dump(dir, "mod"); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if err := b.Dump(dir, "mod"); !errors.Is(err, ErrAlreadyDumped) {
		t.Errorf("expected ErrAlreadyDumped, got %v", err)
	}
	if err := b.Add("late", testArtifact("late", "code")); !errors.Is(err, ErrAlreadyDumped) {
		t.Errorf("expected ErrAlreadyDumped, got %v", err)
	}
}

// TestOpenRejectsBadMagic verifies magic byte validation.
func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus"+Extension)
	if err := os.WriteFile(path, []byte("NOPE0123456789abcdef"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

// TestOpenDetectsCorruption verifies the per-kernel checksum catches
// corrupted code bytes.
func TestOpenDetectsCorruption(t *testing.T) {
	b := NewBuilder("cpu")
	if err := b.Add("k", testArtifact("k", "original code bytes")); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := b.Dump(dir, "mod"); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	path := filepath.Join(dir, "mod"+Extension)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte in the code section (the file tail).
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

// TestChecksum verifies checksum helpers.
func TestChecksum(t *testing.T) {
	a := ComputeChecksum([]byte("data"))
	b := ComputeChecksum([]byte("data"))
	if a != b {
		t.Error("checksums should match for identical data")
	}
	c := ComputeChecksum([]byte("other"))
	if a == c {
		t.Error("checksums should differ for different data")
	}
	if err := ValidateChecksum(a, b); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateChecksum(a, c); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}
