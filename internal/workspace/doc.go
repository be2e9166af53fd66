// Package workspace manages scratch directories used while fetching a LaTeX
// source that does not live on the local filesystem (for example a git
// clone). Each workspace is a timestamped directory removed on Cleanup.
package workspace
