// Package git fetches LaTeX sources that live in a remote repository.
//
// Sources are cloned once per build into a scratch workspace and then copied
// like a local tree. Clone failures are classified as auth, not_found or git
// errors so the CLI can pick an exit code without parsing messages.
package git
