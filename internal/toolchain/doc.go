// Package toolchain runs the external LaTeX build inside a prepared
// destination directory and names the resulting source archive after it.
package toolchain
