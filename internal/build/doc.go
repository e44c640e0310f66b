// Package build provides the canonical syllabus generation pipeline.
//
// Every entry point (HTTP handlers, the generate CLI command, tests) routes
// through Service: fetch the template, assemble it with the submitted values,
// derive the outline fingerprint, then record history and publish events.
// History and event failures are logged and counted but never fail a
// generation that already produced a document.
package build
