package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// TryCatch runs fn and captures its error or panic as a failed Result.
// Every handler observes the normalized error before TryCatch returns.
func TryCatch[T any](fn func() (T, error), handlers ...func(error)) (res Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = fail[T](ToError(rec), handlers)
		}
	}()

	value, err := fn()
	if err != nil {
		return fail[T](err, handlers)
	}
	return Ok(value)
}

// Try is TryCatch for functions that only report an error.
func Try(fn func() error, handlers ...func(error)) Result[struct{}] {
	return TryCatch(func() (struct{}, error) {
		return struct{}{}, fn()
	}, handlers...)
}

func fail[T any](err error, handlers []func(error)) Result[T] {
	for _, h := range handlers {
		if h != nil {
			h(err)
		}
	}
	return Err[T](err)
}

// ErrNil is the error used when a failure carries no value at all.
var ErrNil = errors.New("error: nil")

// ToError normalizes an arbitrary recovered value into an error.
func ToError(v any) error {
	switch val := v.(type) {
	case nil:
		return ErrNil
	case error:
		return val
	case string:
		if val == "" {
			return errors.New("unknown error")
		}
		return errors.New(val)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if data, err := json.MarshalIndent(v, "", "  "); err == nil {
			return fmt.Errorf("stringified error:\n%s", data)
		}
	}
	return fmt.Errorf("unknown error: %v", v)
}
