// Package result carries the outcome of a store call as a value. Callers
// listing data read OrEmpty so a failed query renders as an empty list.
package result

type Result[T any] struct {
	value T
	err   string
	ok    bool
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail records err's description. A nil err still produces a failure.
func Fail[T any](err error) Result[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result[T]{err: msg}
}

func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the success payload and whether the result succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Error returns the failure description, or "" on success.
func (r Result[T]) Error() string { return r.err }

// OrEmpty returns the payload on success and the zero value otherwise.
func (r Result[T]) OrEmpty() T {
	if r.ok {
		return r.value
	}
	var zero T
	return zero
}
