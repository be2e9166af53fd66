// Package staging prepares the destination directory that the text rewrite
// runs in: it guards the destination, copies the LaTeX source tree into it,
// deletes generated build artifacts, and prunes subdirectories once their
// content has been inlined or relocated.
package staging
