// Package services defines shared utilities consumed by the channel pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp channel keys, stage names, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that tag failures with
//     their taxonomy (transport, parse, external tool, filesystem,
//     configuration) so logs and the run summary can classify them.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays uniform across channels.
package services
