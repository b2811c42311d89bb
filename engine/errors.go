package engine

import "fmt"

// Failure taxonomy of the execution pipeline. The public Execute operation
// yields either a complete result map or exactly one of these; no partial
// results are ever returned.
//
//   - CompileError: the source is blank or rejected by the compiler.
//     Rejected (non-blank) source is recovered internally via fallback
//     synthesis; blank source surfaces.
//   - LoadError: the artifact is malformed or the entry callable is
//     missing or signature-mismatched. Fatal for the invocation.
//   - ExecutionError: any failure while running the loaded entry point,
//     including errors raised by the executed code itself. Not retried.
//
// All three wrap their underlying cause, retrievable via errors.Unwrap,
// so diagnostics keep the original failure.

// CompileError indicates the source could not be compiled.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile failed: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LoadError indicates an artifact could not be loaded into an execution
// context or its entry point could not be resolved.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExecutionError indicates the entry point failed while running.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
