// Package result carries the outcome of catalog operations across layers.
// A Result either holds a value or a non-empty list of layer-tagged errors;
// nothing in the request path returns a bare error once it has entered the
// domain.
package result

import "errors"

// Result is the success/failure wrapper returned by value objects,
// repositories and use cases.
type Result[T any] struct {
	value T
	errs  []Error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail builds a failed result. Calling it without errors still yields a
// failure, tagged Unknown, so that IsSuccess iff there are no errors.
func Fail[T any](errs ...Error) Result[T] {
	if len(errs) == 0 {
		errs = []Error{Unknown("operation failed without a reported error")}
	}
	return Result[T]{errs: append([]Error(nil), errs...)}
}

// FailFrom forwards the errors of another outcome into a Result of a
// different type.
func FailFrom[T any](o Outcome) Result[T] {
	return Fail[T](o.Errors()...)
}

// IsSuccess reports whether the result carries a value.
func (r Result[T]) IsSuccess() bool {
	return len(r.errs) == 0
}

// IsFailed reports whether the result carries errors.
func (r Result[T]) IsFailed() bool {
	return len(r.errs) > 0
}

// Value returns the wrapped value. Reading the value of a failure is a
// programming error and panics.
func (r Result[T]) Value() T {
	if r.IsFailed() {
		panic("result: Value called on failed result: " + r.errs[0].Message)
	}
	return r.value
}

// ValueOr returns the value, or fallback when the result failed.
func (r Result[T]) ValueOr(fallback T) T {
	if r.IsFailed() {
		return fallback
	}
	return r.value
}

// Errors returns a copy of the errors in the order they were recorded.
func (r Result[T]) Errors() []Error {
	if len(r.errs) == 0 {
		return nil
	}
	return append([]Error(nil), r.errs...)
}

// Err joins the errors into a plain Go error, or nil on success.
// Use at process edges (CLI, logs) where a Result cannot travel.
func (r Result[T]) Err() error {
	if r.IsSuccess() {
		return nil
	}
	errs := make([]error, len(r.errs))
	for i, e := range r.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Outcome is implemented by every Result regardless of its value type.
type Outcome interface {
	IsFailed() bool
	Errors() []Error
}

// Merge collects the errors of all failed outcomes in argument order.
func Merge(outcomes ...Outcome) []Error {
	var errs []Error
	for _, o := range outcomes {
		if o != nil && o.IsFailed() {
			errs = append(errs, o.Errors()...)
		}
	}
	return errs
}
