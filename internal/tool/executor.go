package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the program is not on PATH.
	ErrNotFound = errors.New("program not found")
	// ErrTimeout is returned when the per-call timeout expired while the
	// caller's context was still live.
	ErrTimeout = errors.New("timed out")
)

// waitDelay bounds how long Run waits for output pipes after the process
// is killed; grandchildren may keep them open.
const waitDelay = 2 * time.Second

// Result holds the outcome of a single invocation.
type Result struct {
	Stdout []byte
	Stderr string
}

// Run executes name with args and captures both output streams. A positive
// timeout bounds the call on top of ctx. The returned error wraps the exit
// status together with the last stderr line so callers can classify it.
// An expired timeout yields ErrTimeout; only the caller's own cancellation
// is returned as a context error.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if ctxErr := parent.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w after %v", name, ErrTimeout, timeout)
	}
	if err != nil {
		if line := lastLine(res.Stderr); line != "" {
			return res, fmt.Errorf("%s: %w: %s", name, err, line)
		}
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// Version returns the first line printed by name with the given flag, used
// by the dependency check.
func Version(ctx context.Context, name string, flag string) (string, error) {
	res, err := Run(ctx, 5*time.Second, name, flag)
	if err != nil {
		return "", err
	}
	return lastLine(firstLine(string(res.Stdout))), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n\t ")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
