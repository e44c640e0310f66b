package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of generations to show" default:"20"`
	JSON  bool `help:"Print the generations as JSON"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	g.configure(cfg, root.Verbose)

	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		return errors.NotFoundError("history database not found").
			WithContext("path", cfg.History.Path).
			UserAction().
			Build()
	}

	store, history, err := openHistory(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	items := history.List(c.Limit)
	if c.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return errors.InternalError("failed to encode history").WithCause(err).Build()
		}
		return nil
	}

	if len(items) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No generations recorded")
		return nil
	}
	for _, s := range items {
		_, _ = fmt.Fprintf(g.Stdout, "%s  %-36s  %-10s  units=%d periods=%d  %s\n",
			s.GeneratedAt.Local().Format(time.DateTime), s.RequestID, s.CourseCode, s.Units, s.TotalPeriods, s.CourseName)
	}
	return nil
}
