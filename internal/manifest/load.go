package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Load parses the manifest at path. Kernel source paths in the manifest are
// resolved relative to the manifest's directory.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}
	f.dir = filepath.Dir(path)
	return validated(&f)
}

// Parse decodes a manifest from a raw buffer. filename is used only for
// diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	return validated(&f)
}

func validated(f *File) (*File, error) {
	if f.Module == nil {
		return nil, fmt.Errorf("manifest is missing the module block")
	}
	if f.Module.Arch == "" {
		return nil, fmt.Errorf("module block must set arch")
	}
	for _, k := range f.Kernels {
		if k.Source == "" && k.WGSL == "" {
			return nil, fmt.Errorf("kernel %q: one of source or wgsl must be set", k.Name)
		}
		for _, a := range k.Args {
			switch a.Kind {
			case "primitive", "template", "any_array":
			default:
				return nil, fmt.Errorf("kernel %q argument %q: unknown kind %q", k.Name, a.Name, a.Kind)
			}
		}
	}
	return f, nil
}
