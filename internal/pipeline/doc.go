// Package pipeline turns a LaTeX source tree into a single-file submission
// directory.
//
// A build runs a fixed sequence of stages against one destination directory.
// Each stage is timed and classified into the BuildReport. The first fatal
// stage stops the build; nothing is retried and nothing is rolled back.
// Toolchain failures are warnings unless configured otherwise.
package pipeline
