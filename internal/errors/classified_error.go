package errors

import (
	stderrors "errors"
	"fmt"
	"slices"
)

// ClassifiedError is the error every stage returns: a category for the exit
// code, a severity, a short message and ordered fields for logging.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	fields   []Field
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Cause() error            { return e.cause }

// IsFatal reports whether the error stops the build.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// Fields returns a copy of the attached fields in the order they were added.
func (e *ClassifiedError) Fields() []Field { return slices.Clone(e.fields) }

// Field returns the value stored under key. When a key was set twice the
// later value wins.
func (e *ClassifiedError) Field(key string) (any, bool) {
	for i := len(e.fields) - 1; i >= 0; i-- {
		if e.fields[i].Key == key {
			return e.fields[i].Value, true
		}
	}
	return nil, false
}

// Path returns the path recorded with WithPath, if any.
func (e *ClassifiedError) Path() string {
	v, _ := e.Field(ContextPath)
	p, _ := v.(string)
	return p
}

// Is matches another ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in err's chain has category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}
