package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/syllabusbuilder/internal/build"
	"git.home.luguber.info/inful/syllabusbuilder/internal/config"
	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/prompt"
	"git.home.luguber.info/inful/syllabusbuilder/internal/textnorm"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Fields      string `short:"f" help:"YAML file holding the field values" type:"path"`
	Interactive bool   `short:"i" help:"Prompt for the field values"`
	Output      string `short:"o" help:"Output file (defaults to output.filename from the config)"`
	Template    string `short:"t" help:"Template DOCX (overrides template.path)"`
	Force       bool   `help:"Overwrite an existing output file"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if c.Template != "" {
		cfg.Template.Path = c.Template
		cfg.Template.URL = ""
	}
	logger := g.configure(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	form, err := c.collect(ctx, g)
	if err != nil {
		return err
	}

	output := c.Output
	if output == "" {
		output = cfg.Output.Filename
	}
	if _, err := os.Stat(output); err == nil && !c.Force {
		return errors.ValidationError(fmt.Sprintf("output file already exists: %s (use --force to overwrite)", output)).
			UserAction().
			Build()
	}

	svc := build.NewService(newTemplateStore(cfg, logger)).WithLogger(logger)
	if cfg.History.Enabled {
		store, history, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		svc.WithHistory(history)
	}

	res, err := svc.Run(ctx, build.Request{Values: fields.Collect(form, textnorm.Normalizer{})})
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, res.Document, 0o644); err != nil {
		return errors.FileSystemError("failed to write output file").
			WithCause(err).
			WithContext("path", output).
			Build()
	}

	_, _ = fmt.Fprintf(g.Stdout, "Wrote %s (%d bytes, fingerprint %s)\n", output, len(res.Document), res.Summary.Fingerprint)
	if len(res.Report.Unresolved) > 0 {
		_, _ = fmt.Fprintf(g.Stderr, "Template tokens left unresolved: %s\n", strings.Join(res.Report.Unresolved, ", "))
	}
	return nil
}

func (c *GenerateCmd) collect(ctx context.Context, g *Global) (url.Values, error) {
	switch {
	case c.Fields != "" && c.Interactive:
		return nil, errors.ValidationError("--fields and --interactive are mutually exclusive").UserAction().Build()
	case c.Fields != "":
		return fields.LoadFile(c.Fields)
	case c.Interactive:
		d := g.Prompt
		if d == nil {
			d = prompt.NewSurveyDriver()
		}
		form, err := prompt.Ask(ctx, d)
		if stderrors.Is(err, prompt.ErrAborted) {
			return nil, errors.ValidationError("generation cancelled").WithCause(err).Build()
		}
		return form, err
	default:
		return nil, errors.ValidationError("one of --fields or --interactive is required").UserAction().Build()
	}
}

// openHistory opens the history database and loads its recent view.
func openHistory(ctx context.Context, cfg *config.Config) (*eventstore.SQLiteStore, *eventstore.History, error) {
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	history := eventstore.NewHistory(store, cfg.History.ListLimit)
	if err := history.Rebuild(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, history, nil
}
