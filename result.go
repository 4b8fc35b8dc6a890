package travelkit

// Result is a tagged value: either an Ok value or an *Error, never both.
// Callers branch on IsOk rather than inspecting dynamic types.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil err is converted to a SystemError so the result is never
// both empty and successful by accident.
func Err[T any](err error) Result[T] {
	te := AsError(err)
	if te == nil {
		te = NewError(KindSystemError, "System error: empty failure")
	}
	return Result[T]{err: te}
}

// From builds a Result from the usual (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the success value. It is the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the failure, or nil on success.
func (r Result[T]) Error() *Error {
	return r.err
}

// Unpack returns the result as a (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
