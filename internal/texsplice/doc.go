// Package texsplice rewrites the text of a LaTeX root document.
//
// It knows two token shapes and nothing else about LaTeX:
//
//	\input{NAME}                   inlined from NAME.tex next to the document
//	\includegraphics[...]{PATH}    PATH flattened into the document directory
//
// Both rewrites collect every match against a snapshot of the text and then
// splice replacements in from the last match to the first, so offsets of
// earlier matches stay valid without any adjustment arithmetic.
//
// Matching is regex based and line oriented. Braces are not balanced and
// inlined content is not scanned again: an \input inside an included file is
// left as is.
package texsplice
