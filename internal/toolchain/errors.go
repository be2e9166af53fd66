package toolchain

import "errors"

var (
	ErrBinaryNotFound  = errors.New("toolchain binary not found")
	ErrStepFailed      = errors.New("toolchain step failed")
	ErrArchiveMissing  = errors.New("collector archive not produced")
	ErrDirectoryAbsent = errors.New("build directory not found")
)
