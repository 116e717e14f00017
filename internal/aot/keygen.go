package aot

import (
	"fmt"
	"strconv"
)

// namedResource pairs a registered resource with the name it was registered
// under. Template arguments are matched against the ref by identity, so the
// generated key names something the backend can resolve at load time.
type namedResource struct {
	name string
	ref  any
}

// keygen appends one specialization key fragment for a single template
// argument: "<prefix>=<textual-value>/" for primitives, or
// "<prefix>=<registered-name>/" for a resource registered with the module.
// Resources are matched by identity, not structural equality.
func keygen(value any, prefix string, known []namedResource) (string, error) {
	switch v := value.(type) {
	case int:
		return prefix + "=" + strconv.Itoa(v) + "/", nil
	case int32:
		return prefix + "=" + strconv.FormatInt(int64(v), 10) + "/", nil
	case int64:
		return prefix + "=" + strconv.FormatInt(v, 10) + "/", nil
	case float32:
		return prefix + "=" + strconv.FormatFloat(float64(v), 'g', -1, 32) + "/", nil
	case float64:
		return prefix + "=" + strconv.FormatFloat(v, 'g', -1, 64) + "/", nil
	case bool:
		return prefix + "=" + strconv.FormatBool(v) + "/", nil
	}
	for _, res := range known {
		if res.ref == value {
			return prefix + "=" + res.name + "/", nil
		}
	}
	return "", fmt.Errorf("%w: got %T", ErrUnsupportedArgumentKind, value)
}
