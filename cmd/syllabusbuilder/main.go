package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/syllabusbuilder/cmd/syllabusbuilder/commands"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	ctx := kong.Parse(&cli,
		kong.Name("syllabusbuilder"),
		kong.Description("Assemble course syllabus documents from a DOCX template."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.Bind(global),
	)

	if err := ctx.Run(&cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
