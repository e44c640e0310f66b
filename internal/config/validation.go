package config

import (
	stderrors "errors"
	"strings"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// Validate checks values defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	for field, raw := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"history.retention":       c.History.Retention,
		"history.prune_interval":  c.History.PruneInterval,
	} {
		if _, err := parsePositive(raw); err != nil {
			errs = append(errs, errors.ConfigError("invalid duration").
				WithCause(err).
				WithContext("field", field).
				WithContext("value", raw).
				Build())
		}
	}
	if strings.TrimSpace(c.Output.Filename) == "" || strings.ContainsAny(c.Output.Filename, `/\"`) {
		errs = append(errs, errors.ConfigError("output.filename must be a bare file name").
			WithContext("value", c.Output.Filename).
			Build())
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, errors.ConfigError("metrics.path must start with /").
			WithContext("value", c.Metrics.Path).
			Build())
	}
	if c.Events.Enabled && strings.TrimSpace(c.Events.Subject) == "" {
		errs = append(errs, errors.ConfigError("events.subject is required when events are enabled").Build())
	}
	return stderrors.Join(errs...)
}

func parsePositive(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, stderrors.New("must be positive")
	}
	return d, nil
}

// mustDuration parses a value Validate has already accepted.
func mustDuration(raw string) time.Duration {
	d, err := parsePositive(raw)
	if err != nil {
		return 0
	}
	return d
}

// ReadTimeoutDuration returns server.read_timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return mustDuration(s.ReadTimeout) }

// WriteTimeoutDuration returns server.write_timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return mustDuration(s.WriteTimeout) }

// ShutdownTimeoutDuration returns server.shutdown_timeout.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout)
}

// RetentionDuration returns history.retention.
func (h HistoryConfig) RetentionDuration() time.Duration { return mustDuration(h.Retention) }

// PruneIntervalDuration returns history.prune_interval.
func (h HistoryConfig) PruneIntervalDuration() time.Duration { return mustDuration(h.PruneInterval) }
