// Package commands implements the syllabusbuilder subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/syllabusbuilder/internal/config"
	"git.home.luguber.info/inful/syllabusbuilder/internal/prompt"
	"git.home.luguber.info/inful/syllabusbuilder/internal/templates"
)

// Global carries process-wide state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer

	// Prompt answers generate --interactive; nil means the terminal.
	Prompt prompt.Driver
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"syllabusbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" help:"Serve the submission form and HTTP API"`
	Generate GenerateCmd `cmd:"" help:"Generate a syllabus document from a fields file or prompts"`
	Outline  OutlineCmd  `cmd:"" help:"Print the Markdown or HTML outline of a DOCX file"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	History  HistoryCmd  `cmd:"" help:"List recent generations from the history database"`
	Fields   FieldsCmd   `cmd:"" help:"List the template token vocabulary"`
}

// AfterApply installs a bootstrap logger; commands that load a config
// replace it via Global.configure.
func (c *CLI) AfterApply(g *Global) error {
	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	g.Logger = config.LoggingConfig{}.NewLogger(g.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// LoadConfig reads the configuration file. A missing file falls back to
// the defaults so the tool works without any setup.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", "path", c.Config)
		return config.Default(), nil
	}
	return config.Load(c.Config)
}

// configure rebuilds the logger from the loaded configuration.
func (g *Global) configure(cfg *config.Config, verbose bool) *slog.Logger {
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}
	g.Logger = cfg.Logging.NewLogger(g.Stderr, verbose)
	slog.SetDefault(g.Logger)
	return g.Logger
}

func newTemplateStore(cfg *config.Config, logger *slog.Logger) *templates.Store {
	return templates.NewStore(templates.Options{
		Path:   cfg.Template.Path,
		URL:    cfg.Template.URL,
		Logger: logger,
	})
}
