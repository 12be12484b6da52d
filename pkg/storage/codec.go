package storage

import (
	"encoding/json"
	"fmt"
)

// Codec converts values to and from their stored string form.
type Codec[T any] interface {
	Encode(T) (string, error)
	Decode(string) (T, error)
}

// JSON is the default codec. Strings are stored verbatim and read back
// verbatim when they are not valid JSON.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) (string, error) {
	if s, ok := any(v).(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}

func (JSON[T]) Decode(s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		if raw, ok := any(s).(T); ok {
			return raw, nil
		}
		return v, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// Funcs adapts a pair of functions into a Codec.
type Funcs[T any] struct {
	EncodeFunc func(T) (string, error)
	DecodeFunc func(string) (T, error)
}

func (f Funcs[T]) Encode(v T) (string, error) {
	if f.EncodeFunc == nil {
		return JSON[T]{}.Encode(v)
	}
	return f.EncodeFunc(v)
}

func (f Funcs[T]) Decode(s string) (T, error) {
	if f.DecodeFunc == nil {
		return JSON[T]{}.Decode(s)
	}
	return f.DecodeFunc(s)
}
