package rtldoc

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Engine. Everything else that goes wrong during
// generation is a degradation: logged, counted and recovered.
var (
	ErrMissingRecord     = errors.New("rtldoc: record not found")
	ErrEmitterFailure    = errors.New("rtldoc: emitter failed")
	ErrUnsupportedFormat = errors.New("rtldoc: unsupported format")
)

// GenError is an error that occurred during one stage of a generation.
// It wraps the underlying error and names the stage for context.
type GenError struct {
	Op  string // stage, e.g. "load", "render", "emit"
	Err error  // underlying error
}

func (e *GenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rtldoc.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rtldoc.%s: unknown error", e.Op)
}

func (e *GenError) Unwrap() error {
	return e.Err
}

func newGenError(op string, err error) *GenError {
	return &GenError{Op: op, Err: err}
}
