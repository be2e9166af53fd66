package errors

import "slices"

// ErrorBuilder assembles a ClassifiedError. Start from one of the category
// constructors below.
type ErrorBuilder struct {
	err ClassifiedError
}

func newBuilder(category ErrorCategory, severity ErrorSeverity, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{category: category, severity: severity, message: message}}
}

// WithCause sets the wrapped cause.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext appends a field.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.fields = append(b.err.fields, Field{Key: key, Value: value})
	return b
}

// WithPath records the file or directory the error is about.
func (b *ErrorBuilder) WithPath(path string) *ErrorBuilder {
	return b.WithContext(ContextPath, path)
}

// Build returns the error. The builder may be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.fields = slices.Clone(b.err.fields)
	return &e
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return newBuilder(CategoryConfig, SeverityFatal, message)
}

// ValidationError creates an invalid-argument error.
func ValidationError(message string) *ErrorBuilder {
	return newBuilder(CategoryValidation, SeverityFatal, message)
}

// NotFound creates a missing source, root document, input or figure error.
func NotFound(message string) *ErrorBuilder {
	return newBuilder(CategoryNotFound, SeverityFatal, message)
}

// AlreadyExists creates an error for a target that must not exist yet.
func AlreadyExists(message string) *ErrorBuilder {
	return newBuilder(CategoryAlreadyExists, SeverityFatal, message)
}

// GitError creates a clone or remote lookup error.
func GitError(message string) *ErrorBuilder {
	return newBuilder(CategoryGit, SeverityFatal, message)
}

// AuthError creates an authentication error.
func AuthError(message string) *ErrorBuilder {
	return newBuilder(CategoryAuth, SeverityFatal, message)
}

// ToolchainError creates a compiler or archiver error. Toolchain failures are
// warnings; the pipeline escalates them when configured to.
func ToolchainError(message string) *ErrorBuilder {
	return newBuilder(CategoryToolchain, SeverityWarning, message)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return newBuilder(CategoryFileSystem, SeverityFatal, message)
}
