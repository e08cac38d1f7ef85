// Package logging assembles structured slog loggers and formatting helpers used
// across tubecast.
//
// It owns the console and JSON handlers, routes output to stdout plus a daily
// log file, and exposes context-aware helpers so pipeline code automatically
// tags log lines with the channel, stage and run correlation ID. CleanupOldLogs
// prunes daily files past the configured retention.
package logging
