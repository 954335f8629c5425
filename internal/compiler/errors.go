package compiler

import "fmt"

// UnavailableError means no compiler executable could be located.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("compiler unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// CompileFailedError means the compiler ran but produced no usable document.
type CompileFailedError struct {
	Compiler string
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int
	// Output is the tail of the compiler's console output.
	Output string
	Err    error
}

func (e *CompileFailedError) Error() string {
	return fmt.Sprintf("compile with %s failed (exit %d): %v", e.Compiler, e.ExitCode, e.Err)
}

func (e *CompileFailedError) Unwrap() error {
	return e.Err
}
