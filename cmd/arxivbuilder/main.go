package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/arxivbuilder/cmd/arxivbuilder/commands"
	aerrors "git.home.luguber.info/inful/arxivbuilder/internal/errors"
	"git.home.luguber.info/inful/arxivbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("arxivbuilder"),
		kong.Description("Flatten a LaTeX project into a single-file arXiv submission."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		aerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
