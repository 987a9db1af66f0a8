package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/usefloww/floww/internal/core"
)

// ConstraintMatches reports whether the observed value satisfies every
// sub-test of the constraint. Absent sub-tests are skipped; a constraint
// with no sub-tests always passes.
//
// A malformed pattern returns an error instead of a match result: that
// is an authoring bug in stored rules, not a policy decision, and must
// surface to whoever can fix the rule.
func ConstraintMatches(c core.ParameterConstraint, value any) (bool, error) {
	if len(c.In) > 0 && !containsScalar(c.In, value) {
		return false, nil
	}
	if len(c.NotIn) > 0 && containsScalar(c.NotIn, value) {
		return false, nil
	}
	if c.Eq != nil && !scalarEqual(c.Eq, value) {
		return false, nil
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return false, fmt.Errorf("compiling pattern '%s': %w", c.Pattern, err)
		}
		if !re.MatchString(stringify(value)) {
			return false, nil
		}
	}
	if c.StartsWith != "" && !strings.HasPrefix(stringify(value), c.StartsWith) {
		return false, nil
	}
	return true, nil
}

func containsScalar(set []any, value any) bool {
	for _, member := range set {
		if scalarEqual(member, value) {
			return true
		}
	}
	return false
}

// scalarEqual compares two scalars without cross-type coercion, except
// that numeric values compare by value regardless of their Go type
// (JSON decodes numbers to float64, YAML to int). A string never equals
// a number, a bool never equals anything but a bool.
func scalarEqual(a, b any) bool {
	if na, ok := toFloat(a); ok {
		nb, ok := toFloat(b)
		return ok && na == nb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
