package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/syllabusbuilder/internal/assembly"
	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// FieldsCmd implements the 'fields' command.
type FieldsCmd struct {
	JSON bool `help:"Print the vocabulary as JSON"`
}

func (f *FieldsCmd) Run(g *Global) error {
	vocab := assembly.Vocabulary()
	if f.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(vocab); err != nil {
			return errors.InternalError("failed to encode vocabulary").WithCause(err).Build()
		}
		return nil
	}

	width := 0
	for _, field := range vocab {
		width = max(width, len(field.Token))
	}
	for _, field := range vocab {
		_, _ = fmt.Fprintf(g.Stdout, "%-*s  %-9s  %s\n", width, field.Token, field.Kind, field.Title)
	}
	return nil
}
