package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type undefined struct{}

// Undefined stands for an absent argument. It hashes as "undefined",
// while a nil argument hashes as "null".
var Undefined = undefined{}

const hashSeparator = "|"

// DefaultHash structurally hashes primitive-like arguments.
// Strings pass through, numbers and booleans are formatted, maps, slices and
// structs are serialized as JSON. Multiple arguments are joined with "|".
// Functions, channels, complex numbers and unsafe pointers are rejected with ErrUnhashable.
func DefaultHash(args ...any) (string, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		part, err := hashArg(arg)
		if err != nil {
			return "", fmt.Errorf("argument %d: %w", i, err)
		}
		parts[i] = part
	}
	return strings.Join(parts, hashSeparator), nil
}

// DefaultHashFunc is the HashFunc used when AddComputedField receives none.
func DefaultHashFunc(args ComputeArgs) (string, error) {
	return DefaultHash(args)
}

func hashArg(v any) (string, error) {
	switch val := v.(type) {
	case undefined:
		return "undefined", nil
	case nil:
		return "null", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return formatFloat(val, 64), nil
	case float32:
		return formatFloat(float64(val), 32), nil
	case json.Number:
		return val.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float(), rv.Type().Bits()), nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return "", fmt.Errorf("%w: %T", ErrUnhashable, v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnhashable, err)
	}
	return string(data), nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
