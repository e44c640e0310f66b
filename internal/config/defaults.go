package config

// Defaults for every optional setting.
const (
	DefaultAddress         = ":5000"
	DefaultReadTimeout     = "15s"
	DefaultWriteTimeout    = "30s"
	DefaultShutdownTimeout = "10s"
	DefaultMaxFormBytes    = 1 << 20
	DefaultTemplatePath    = "template.docx"
	DefaultFilename        = "Course_Syllabus.docx"
	DefaultHistoryPath     = "syllabusbuilder.db"
	DefaultRetention       = "720h"
	DefaultPruneInterval   = "1h"
	DefaultListLimit       = 50
	DefaultNATSURL         = "nats://127.0.0.1:4222"
	DefaultSubject         = "syllabus.generated"
	DefaultMetricsPath     = "/metrics"
)

func applyDefaults(cfg *Config) {
	s := &cfg.Server
	s.Address = orDefault(s.Address, DefaultAddress)
	s.ReadTimeout = orDefault(s.ReadTimeout, DefaultReadTimeout)
	s.WriteTimeout = orDefault(s.WriteTimeout, DefaultWriteTimeout)
	s.ShutdownTimeout = orDefault(s.ShutdownTimeout, DefaultShutdownTimeout)
	if s.MaxFormBytes <= 0 {
		s.MaxFormBytes = DefaultMaxFormBytes
	}

	cfg.Template.Path = orDefault(cfg.Template.Path, DefaultTemplatePath)
	cfg.Output.Filename = orDefault(cfg.Output.Filename, DefaultFilename)

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	h := &cfg.History
	h.Path = orDefault(h.Path, DefaultHistoryPath)
	h.Retention = orDefault(h.Retention, DefaultRetention)
	h.PruneInterval = orDefault(h.PruneInterval, DefaultPruneInterval)
	if h.ListLimit <= 0 {
		h.ListLimit = DefaultListLimit
	}

	cfg.Events.URL = orDefault(cfg.Events.URL, DefaultNATSURL)
	cfg.Events.Subject = orDefault(cfg.Events.Subject, DefaultSubject)
	cfg.Metrics.Path = orDefault(cfg.Metrics.Path, DefaultMetricsPath)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
