package probe

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotApplicable  = errors.New("not applicable")
	ErrParseCorrupted = errors.New("parse corrupted")
	ErrUnsupported    = errors.New("unsupported file category")
)

// Error is a classified probe failure.
type Error struct {
	Probe string // Probe name, e.g. "ffprobe" or "webp".
	Kind  error  // ErrNotApplicable or ErrParseCorrupted.
	Err   error  // Cause; may be nil.
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("probe=%s: %v", e.Probe, e.Kind)
	}
	return fmt.Sprintf("probe=%s: %v: %v", e.Probe, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotApplicable reports that the file is not of the probe's sub-format.
func NotApplicable(probe string, err error) error {
	return &Error{Probe: probe, Kind: ErrNotApplicable, Err: err}
}

// NotApplicablef is NotApplicable with a formatted cause.
func NotApplicablef(probe, format string, args ...interface{}) error {
	return NotApplicable(probe, fmt.Errorf(format, args...))
}

// Corrupted reports a file that matched the sub-format but failed to parse.
func Corrupted(probe string, err error) error {
	return &Error{Probe: probe, Kind: ErrParseCorrupted, Err: err}
}

// Corruptedf is Corrupted with a formatted cause.
func Corruptedf(probe, format string, args ...interface{}) error {
	return Corrupted(probe, fmt.Errorf(format, args...))
}

// IsContext reports whether err comes from context cancellation or deadline.
func IsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Classify makes sure err carries a kind. Unclassified errors (I/O failures,
// tool exits) become ErrNotApplicable; context errors pass through.
func Classify(probe string, err error) error {
	if err == nil || IsContext(err) {
		return err
	}
	if errors.Is(err, ErrNotApplicable) || errors.Is(err, ErrParseCorrupted) {
		return err
	}
	return NotApplicable(probe, err)
}
