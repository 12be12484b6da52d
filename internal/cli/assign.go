package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/domino/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrAssignment is returned for arguments that are not key=value pairs.
var ErrAssignment = errors.New("invalid assignment")

// ParseAssignments turns key=value arguments into values.
// Each value is read as a YAML scalar or flow collection, so `n=3` yields an
// int, `on=true` a bool and `tags=[a, b]` a list. Anything YAML rejects is
// kept as a plain string.
func ParseAssignments(args []string) (domain.Values, error) {
	values := make(domain.Values, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (want key=value)", ErrAssignment, arg)
		}
		values[key] = parseValue(raw)
	}
	return values, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return normalize(v)
}

// normalize converts YAML maps into string-keyed maps so values stay JSON
// encodable.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}
