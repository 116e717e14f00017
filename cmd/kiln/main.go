// Package main provides the kiln CLI: builds .kiln modules from HCL
// manifests and inspects existing ones.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kiln-ml/kiln/internal/aot"
	"github.com/kiln-ml/kiln/internal/archive"
	"github.com/kiln-ml/kiln/internal/backend/cpu"
	"github.com/kiln-ml/kiln/internal/backend/webgpu"
	"github.com/kiln-ml/kiln/internal/manifest"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("kiln %s\n", version)
	case "build":
		if err := runBuild(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "kiln build: %v\n", err)
			os.Exit(1)
		}
	case "inspect":
		if err := runInspect(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "kiln inspect: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("kiln - ahead-of-time kernel module packager")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  build   -m module.hcl -o DIR [-p PREFIX]   Build a .kiln module from a manifest")
	fmt.Println("  inspect FILE                               Show the contents of a .kiln module")
	fmt.Println("  version                                    Show version")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	manifestPath := fs.String("m", "module.hcl", "path to the build manifest")
	outDir := fs.String("o", ".", "output directory")
	prefix := fs.String("p", "", "filename prefix (defaults to the manifest's module name)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(*logLevel, *logFormat, os.Stderr)

	f, err := manifest.Load(*manifestPath)
	if err != nil {
		return err
	}

	backend, release, err := openBackend(f.Module.Arch)
	if err != nil {
		return err
	}
	defer release()

	m, err := manifest.Build(f, backend, aot.WithLogger(log))
	if err != nil {
		return err
	}

	name := *prefix
	if name == "" {
		name = f.Module.Name
	}
	if name == "" {
		name = "module"
	}
	return m.Save(*outDir, name)
}

func openBackend(arch string) (aot.Backend, func(), error) {
	switch arch {
	case cpu.Arch:
		return cpu.New(), func() {}, nil
	case webgpu.Arch:
		gpu, err := webgpu.New()
		if err != nil {
			return nil, nil, err
		}
		return gpu, gpu.Release, nil
	default:
		return nil, nil, fmt.Errorf("unknown arch %q", arch)
	}
}

func runInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one module file")
	}
	f, err := archive.Open(args[0])
	if err != nil {
		return err
	}

	h := f.Header
	fmt.Printf("arch: %s (kiln %s, format v%d, created %s)\n",
		h.Arch, h.KilnVersion, h.FormatVersion, h.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("fields: %d\n", len(h.Fields))
	for _, fm := range h.Fields {
		fmt.Printf("  %-20s %s shape=%v cells=%dx%d handle=%d\n",
			fm.Name, fm.DType, fm.Shape, fm.Rows, fm.Cols, fm.Handle)
	}
	fmt.Printf("ndarrays: %d\n", len(h.NDArrays))
	for _, am := range h.NDArrays {
		fmt.Printf("  %-20s %s shape=%v cells=%dx%d\n",
			am.Name, am.DType, am.Shape, am.Rows, am.Cols)
	}
	fmt.Printf("kernels: %d\n", len(h.Kernels))
	for _, km := range h.Kernels {
		if km.Template {
			fmt.Printf("  %-20s key=%q entry=%s size=%d\n", km.Name, km.Key, km.Entry, km.Size)
		} else {
			fmt.Printf("  %-20s entry=%s size=%d\n", km.Name, km.Entry, km.Size)
		}
	}
	return nil
}

// newLogger creates a slog.Logger without touching the global default.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, opts)
	} else {
		handler = slog.NewTextHandler(outW, opts)
	}
	return slog.New(handler)
}
