package kernel

import (
	"fmt"
	"strconv"

	"github.com/kiln-ml/kiln/internal/resource"
)

// Artifact is one compiled variant of a kernel. The code bytes are opaque to
// the packaging layer; only the compiler that produced them and the loader
// that consumes them interpret the contents.
type Artifact struct {
	KernelName string // defining kernel's name
	Entry      string // entry point within the code
	Signature  string // concrete-argument-type signature the variant was compiled for
	Code       []byte // backend-defined compiled form
}

// Compiler turns a kernel definition plus concrete argument values into a
// compiled artifact. Implementations cache by argument-type signature, so
// repeated calls with type-identical arguments are expected to be cheap.
type Compiler interface {
	// EnsureCompiled returns a compiled artifact for the definition and the
	// given concrete arguments, compiling on first use. The call is
	// synchronous; errors are fatal to the calling registration.
	EnsureCompiled(def *Def, args []any) (*Artifact, error)
}

// Signature derives the concrete-argument-type signature used as the
// compilation cache key. Two argument vectors with the same signature resolve
// to the same compiled variant.
func Signature(def *Def, args []any) (string, error) {
	if len(args) != len(def.Args()) {
		return "", fmt.Errorf("kernel %q: got %d arguments, schema declares %d",
			def.Name(), len(args), len(def.Args()))
	}
	sig := ""
	for i, v := range args {
		frag, err := typeFragment(v)
		if err != nil {
			return "", fmt.Errorf("kernel %q argument %q: %w", def.Name(), def.Args()[i].Name, err)
		}
		sig += frag + ";"
	}
	return sig, nil
}

func typeFragment(v any) (string, error) {
	switch t := v.(type) {
	case int, int32, int64:
		return "i", nil
	case float32, float64:
		return "f", nil
	case bool:
		return "b", nil
	case *resource.Field:
		frag := "field:" + t.DType().String() + ":" + t.Kind().String()
		frag += ":" + strconv.Itoa(t.Rows()) + "x" + strconv.Itoa(t.Cols())
		frag += ":" + strconv.Itoa(len(t.Shape())) + "d"
		return frag, nil
	case *resource.NDArray:
		frag := "ndarray:" + t.DType().String() + ":" + t.Kind().String()
		frag += ":" + strconv.Itoa(t.Rows()) + "x" + strconv.Itoa(t.Cols())
		frag += ":" + strconv.Itoa(len(t.Shape())) + "d"
		return frag, nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", v)
	}
}
