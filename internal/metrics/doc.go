// Package metrics records syllabus generation metrics.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so callers never check whether metrics are enabled:
//
//	rec := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Metrics.Enabled {
//	    rec = metrics.NewPrometheusRecorder(reg)
//	}
//	rec.ObserveGeneration(elapsed, metrics.OutcomeSuccess)
package metrics
