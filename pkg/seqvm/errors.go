package seqvm

import (
	"errors"
	"fmt"
)

var (
	ErrLabelRedefined = errors.New("label already defined")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrTargetRange    = errors.New("jump target out of range")
	ErrEmptyProgram   = errors.New("empty program")
	ErrFallthrough    = errors.New("program ends with MATCH")
	ErrNilLabel       = errors.New("nil label")
	ErrForeignLabel   = errors.New("label resolved by another sequence")
	ErrNilToken       = errors.New("nil token")
	ErrCompiled       = errors.New("sequence already compiled")
	ErrTerminated     = errors.New("execution context already terminated")
)

// AsmError is an error found while assembling a sequence. These are bugs
// in whatever is driving the Compiler, never a property of the input.
type AsmError struct {
	Err   error
	Index int    // instruction index, -1 if not tied to one
	Label string // label name, if any
}

func (e *AsmError) Error() string {
	msg := e.Err.Error()
	if e.Label != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Label)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("assemble @ %d: %s", e.Index, msg)
	}
	return "assemble: " + msg
}

func (e *AsmError) Unwrap() error { return e.Err }
