// Package logging constructs slog loggers for the dropwatch CLI and daemon.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log aggregation. Components obtain child loggers through
// NewComponentLogger so every record carries a stable component attribute.
// Tests use NewNop to silence output.
package logging
