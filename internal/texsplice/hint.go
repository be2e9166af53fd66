package texsplice

// RerunHint asks the archive's multi-pass compiler for another run.
const RerunHint = `\typeout{get arXiv to do 4 passes: Label(s) may have changed. Rerun}`

// AppendRerunHint appends RerunHint on its own line.
func AppendRerunHint(text string) string {
	return text + "\n" + RerunHint
}
