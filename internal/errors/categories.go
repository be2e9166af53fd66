package errors

// ErrorCategory names where a build failure came from. The CLI turns it into
// the process exit status.
type ErrorCategory string

const (
	// Invocation and configuration.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// Files the build expects to find, or expects to be absent.
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryAlreadyExists ErrorCategory = "already_exists"
	CategoryFileSystem    ErrorCategory = "filesystem"

	// External collaborators.
	CategoryGit       ErrorCategory = "git"
	CategoryToolchain ErrorCategory = "toolchain"
)

// exitCodes holds the process status per category. Anything missing,
// including unclassified errors, exits with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation:    2,
	CategoryNotFound:      3,
	CategoryAlreadyExists: 4,
	CategoryAuth:          5,
	CategoryConfig:        7,
	CategoryGit:           8,
	CategoryToolchain:     9,
	CategoryFileSystem:    11,
}

// ExitCode returns the process exit status for c.
func (c ErrorCategory) ExitCode() int {
	if code, ok := exitCodes[c]; ok {
		return code
	}
	return 1
}

// ErrorSeverity says whether an error stops the build.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityWarning ErrorSeverity = "warning" // recorded on the report, build continues
)

// ContextPath is the field key naming the file or directory an error is about.
const ContextPath = "path"

// Field is one key/value pair attached to an error.
type Field struct {
	Key   string
	Value any
}
