package commands

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/preview"
)

// OutlineCmd implements the 'outline' command.
type OutlineCmd struct {
	File   string `arg:"" help:"DOCX file to outline" type:"path"`
	Format string `help:"Output format" enum:"markdown,html" default:"markdown"`
	Output string `short:"o" help:"Write to a file instead of stdout"`
}

func (c *OutlineCmd) Run(g *Global) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundError("document not found").WithContext("path", c.File).Build()
		}
		return errors.FileSystemError("failed to read document").WithCause(err).WithContext("path", c.File).Build()
	}

	outline, err := preview.FromBytes(data, map[string]any{"source": filepath.Base(c.File)})
	if err != nil {
		return err
	}

	var out []byte
	if c.Format == "html" {
		html, err := outline.HTML()
		if err != nil {
			return err
		}
		out = []byte(html)
	} else {
		if out, err = outline.Markdown(); err != nil {
			return err
		}
	}

	if c.Output == "" {
		_, err = g.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(c.Output, out, 0o644); err != nil {
		return errors.FileSystemError("failed to write outline").WithCause(err).WithContext("path", c.Output).Build()
	}
	return nil
}
