package probe

import (
	"context"
	"errors"
	"fmt"
)

// Attempt records one probe invocation of a resolution.
type Attempt struct {
	Probe string
	Err   error // nil on success.
}

// Outcome is a short label for logs: "ok", "not applicable", "corrupted",
// "unsupported", "canceled" or "skipped".
func (a Attempt) Outcome() string {
	switch {
	case a.Err == nil:
		return "ok"
	case errors.Is(a.Err, ErrParseCorrupted):
		return "corrupted"
	case errors.Is(a.Err, ErrUnsupported):
		return "unsupported"
	case IsContext(a.Err):
		return "canceled"
	case errors.Is(a.Err, ErrSkipped):
		return "skipped"
	default:
		return "not applicable"
	}
}

// ErrSkipped marks a successful probe whose result was rejected by the
// caller (for example an image with no dimensions).
var ErrSkipped = fmt.Errorf("%w: empty result", ErrNotApplicable)

// Run calls fn once and classifies its outcome. A panic inside fn becomes
// ErrParseCorrupted. Context cancellation is checked before the call.
func Run[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (out T, err error) {
	if err := ctx.Err(); err != nil {
		return out, err
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = Corrupted(name, fmt.Errorf("panic: %v", r))
		}
	}()
	out, err = fn(ctx)
	if err != nil {
		var zero T
		return zero, Classify(name, err)
	}
	return out, nil
}

// Step is one named probe of a fallback chain. Accept, when set, rejects a
// successful but unusable result so the chain moves on.
type Step[T any] struct {
	Name   string
	Probe  func(context.Context) (T, error)
	Accept func(T) bool
}

// Chain runs steps in order and returns the first accepted result together
// with the trace of every attempt. Later steps are not invoked once one
// succeeds. ok is false when no step produced a result; err is non-nil only
// when ctx ends the chain.
func Chain[T any](ctx context.Context, steps []Step[T]) (out T, ok bool, trace []Attempt, err error) {
	for _, s := range steps {
		v, perr := Run(ctx, s.Name, s.Probe)
		if perr == nil && s.Accept != nil && !s.Accept(v) {
			perr = &Error{Probe: s.Name, Kind: ErrNotApplicable, Err: ErrSkipped}
		}
		trace = append(trace, Attempt{Probe: s.Name, Err: perr})
		if perr == nil {
			return v, true, trace, nil
		}
		if IsContext(perr) {
			if err := ctx.Err(); err != nil {
				return out, false, trace, err
			}
			// A deadline of the probe's own making; try the next one.
			trace[len(trace)-1].Err = NotApplicable(s.Name, fmt.Errorf("%v", perr))
		}
	}
	return out, false, trace, nil
}
