package result

// Result holds either a value (Ok) or an error (Err).
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok creates a successful result.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Err creates a failed result. A nil err is normalized by ToError.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = ToError(nil)
	}
	return Result[T]{err: err}
}

// IsOk reports whether the result is a success.
func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap returns the value and the error in Go's usual shape.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// ValueOr returns the success value, or fallback on failure.
func (r Result[T]) ValueOr(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}

// OrElse maps the error of a failed result. Successful results pass through.
func (r Result[T]) OrElse(fn func(error) error) Result[T] {
	if r.ok {
		return r
	}
	return Err[T](fn(r.err))
}

// Match calls onOk or onErr depending on the variant.
func (r Result[T]) Match(onOk func(T), onErr func(error)) {
	if r.ok {
		if onOk != nil {
			onOk(r.value)
		}
		return
	}
	if onErr != nil {
		onErr(r.err)
	}
}

// Map transforms the value of a successful result.
// Failures are carried over unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// Fold collapses either variant into a single value.
func Fold[T, U any](r Result[T], onOk func(T) U, onErr func(error) U) U {
	if r.ok {
		return onOk(r.value)
	}
	return onErr(r.err)
}
