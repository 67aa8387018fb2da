// Package workflow sequences validation steps in front of a use case.
//
// A Pipeline accumulates result.Errors. It starts in fail-fast mode: once
// it holds an error every further step is skipped. Validate switches to
// collecting mode for the duration of a block so that independent checks
// all report together. ExecuteIfNoErrors runs the side-effecting action
// only when nothing was collected.
package workflow

import (
	"context"
	"net/http"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// Pipeline is an immutable error accumulator. The zero value is a
// collecting pipeline; use Empty for the usual fail-fast entry state.
type Pipeline struct {
	errs         []result.Error
	breakOnError bool
}

// Empty returns a fail-fast pipeline without errors.
func Empty() Pipeline {
	return Pipeline{breakOnError: true}
}

// Errors returns a copy of the collected errors.
func (p Pipeline) Errors() []result.Error {
	if len(p.errs) == 0 {
		return nil
	}
	return append([]result.Error(nil), p.errs...)
}

func (p Pipeline) HasErrors() bool {
	return len(p.errs) > 0
}

func (p Pipeline) BreakOnError() bool {
	return p.breakOnError
}

// Halted reports whether further steps are skipped.
func (p Pipeline) Halted() bool {
	return p.breakOnError && len(p.errs) > 0
}

// append never mutates p's backing array.
func (p Pipeline) append(errs ...result.Error) Pipeline {
	if len(errs) == 0 {
		return p
	}
	merged := make([]result.Error, 0, len(p.errs)+len(errs))
	merged = append(merged, p.errs...)
	merged = append(merged, errs...)
	return Pipeline{errs: merged, breakOnError: p.breakOnError}
}

// Validate runs block in collecting mode and merges whatever it collected
// back into p, restoring p's mode afterwards.
func (p Pipeline) Validate(block func(Pipeline) Pipeline) Pipeline {
	if p.Halted() || block == nil {
		return p
	}
	inner := block(Pipeline{breakOnError: false})
	return p.append(inner.errs...)
}

// CollectErrors appends the errors of every failed outcome, in order.
func (p Pipeline) CollectErrors(outcomes ...result.Outcome) Pipeline {
	if p.Halted() {
		return p
	}
	return p.append(result.Merge(outcomes...)...)
}

// Ensure appends err when cond is false.
func (p Pipeline) Ensure(cond bool, err result.Error) Pipeline {
	if p.Halted() || cond {
		return p
	}
	return p.append(err)
}

// Fail appends err unconditionally (unless halted).
func (p Pipeline) Fail(errs ...result.Error) Pipeline {
	if p.Halted() {
		return p
	}
	return p.append(errs...)
}

// Probe asks storage whether something exists. A nil Probe is skipped.
type Probe func(ctx context.Context) result.Result[bool]

// ProbeOf binds a value-object result to an existence check. When the
// value failed to construct there is nothing to probe and nil is returned;
// the construction errors are expected to be collected separately.
func ProbeOf[V any](value result.Result[V], check func(context.Context, V) result.Result[bool]) Probe {
	if value.IsFailed() || check == nil {
		return nil
	}
	v := value.Value()
	return func(ctx context.Context) result.Result[bool] {
		return check(ctx, v)
	}
}

// ProbeOf2 is ProbeOf for checks keyed by two values.
func ProbeOf2[A, B any](a result.Result[A], b result.Result[B], check func(context.Context, A, B) result.Result[bool]) Probe {
	if a.IsFailed() || b.IsFailed() || check == nil {
		return nil
	}
	av, bv := a.Value(), b.Value()
	return func(ctx context.Context) result.Result[bool] {
		return check(ctx, av, bv)
	}
}

// IfNotExists appends missing when probe reports the record is absent.
func (p Pipeline) IfNotExists(ctx context.Context, probe Probe, missing result.Error) Pipeline {
	return p.expect(ctx, probe, true, missing)
}

// IfAlreadyExists appends duplicate when probe reports the record is present.
func (p Pipeline) IfAlreadyExists(ctx context.Context, probe Probe, duplicate result.Error) Pipeline {
	return p.expect(ctx, probe, false, duplicate)
}

func (p Pipeline) expect(ctx context.Context, probe Probe, want bool, mismatch result.Error) Pipeline {
	if p.Halted() || probe == nil {
		return p
	}
	if err := ctx.Err(); err != nil {
		return p.append(cancelled(err))
	}
	observed := probe(ctx)
	if observed.IsFailed() {
		return p.append(observed.Errors()...)
	}
	if observed.Value() != want {
		return p.append(mismatch)
	}
	return p
}

// ExecuteIfNoErrors runs action exactly once when p holds no errors.
// Otherwise it returns p's errors without calling action.
func ExecuteIfNoErrors[T any](ctx context.Context, p Pipeline, action func(context.Context) result.Result[T]) result.Result[T] {
	if p.HasErrors() {
		return result.Fail[T](p.errs...)
	}
	if err := ctx.Err(); err != nil {
		return result.Fail[T](cancelled(err))
	}
	return action(ctx)
}

// MapResult transforms a successful value; failures pass through unchanged.
func MapResult[T, U any](r result.Result[T], transform func(T) U) result.Result[U] {
	if r.IsFailed() {
		return result.FailFrom[U](r)
	}
	return result.Ok(transform(r.Value()))
}

// Bind chains a Result-returning step after a successful one.
func Bind[T, U any](r result.Result[T], next func(T) result.Result[U]) result.Result[U] {
	if r.IsFailed() {
		return result.FailFrom[U](r)
	}
	return next(r.Value())
}

func cancelled(err error) result.Error {
	return result.New(result.LayerInfrastructure, http.StatusServiceUnavailable, "request cancelled: "+err.Error())
}
