// Package errors provides the classified error type used across arxivbuilder.
//
// Every failure that leaves a stage carries a category (config, not_found,
// already_exists, toolchain, ...) and a severity. The CLI adapter maps the
// category to a process exit code.
//
// Example usage:
//
//	err := errors.NotFound("included file does not exist").
//		WithCause(os.ErrNotExist).
//		WithPath(includePath).
//		Build()
package errors
