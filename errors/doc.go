// Package errors provides structured error types for the bindless lowering module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the value path, the offending layout type and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindUnsupportedLeafShape).
//		Path("value", "b").
//		Type("u16").
//		Detail("leaf is not 32 bits wide").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedLeaf(errors.PhaseLower, path, "u16")
//	err := errors.OutOfBounds(errors.PhaseExec, path, 10, 5)
//
// Every lowering error is fatal: reaching one means the front end produced a
// shape the backend cannot marshal, and compilation of the module aborts.
// All errors implement the standard error interface and support errors.Is/As.
package errors
