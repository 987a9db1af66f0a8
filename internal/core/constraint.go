package core

import (
	"fmt"
	"regexp"
)

// ParameterConstraint is one field-level test. All sub-tests that are
// set must pass (implicit AND); a constraint with no sub-tests set
// trivially passes.
type ParameterConstraint struct {
	// In requires the value to be a member of this set of scalars.
	In []any `yaml:"in,omitempty" json:"in,omitempty"`

	// NotIn requires the value to NOT be a member of this set.
	NotIn []any `yaml:"not_in,omitempty" json:"notIn,omitempty"`

	// Eq requires exact scalar equality.
	Eq any `yaml:"eq,omitempty" json:"eq,omitempty"`

	// Pattern is a regular expression the string form of the value must match.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// StartsWith is a literal prefix the string form of the value must have.
	StartsWith string `yaml:"starts_with,omitempty" json:"startsWith,omitempty"`
}

// IsVacuous reports whether no sub-test is set.
func (c ParameterConstraint) IsVacuous() bool {
	return len(c.In) == 0 && len(c.NotIn) == 0 && c.Eq == nil && c.Pattern == "" && c.StartsWith == ""
}

func (c *ParameterConstraint) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case map[string]any:
		// explicit operator map, e.g. { in: [general, random] }
		type plain ParameterConstraint // prevent recursion
		var p plain
		if err := unmarshal(&p); err != nil {
			return err
		}
		*c = ParameterConstraint(p)

		for key := range v {
			switch key {
			case "in", "not_in", "eq", "pattern", "starts_with":
			default:
				return fmt.Errorf("unknown constraint operator '%s'", key)
			}
		}
		return nil

	case []any:
		// list shorthand: { channel: [general, random] } means "in"
		*c = ParameterConstraint{In: v}
		return nil

	default:
		// scalar shorthand: { channel: general } means exact equality
		*c = ParameterConstraint{Eq: raw}
		return nil
	}
}

// Validate checks that the constraint is well-formed: the pattern must
// compile and set members must be scalars. This runs at the
// storage-write boundary so the evaluator can assume well-formed input.
func (c ParameterConstraint) Validate() error {
	for _, v := range c.In {
		if !IsScalar(v) {
			return fmt.Errorf("'in' contains non-scalar value '%v'", v)
		}
	}
	for _, v := range c.NotIn {
		if !IsScalar(v) {
			return fmt.Errorf("'not_in' contains non-scalar value '%v'", v)
		}
	}
	if c.Eq != nil && !IsScalar(c.Eq) {
		return fmt.Errorf("'eq' is a non-scalar value '%v'", c.Eq)
	}
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("compiling pattern '%s': %w", c.Pattern, err)
		}
	}
	return nil
}

// IsScalar reports whether v is a string, number or boolean.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
