// Package pipeline runs the per-channel ingestion state machine:
// discover, probe existing artifacts, filter and download new items, publish
// them, retire expired copies and render the feed.
//
// A Pipeline owns its channel directory and remote prefix exclusively. The
// only shared resource is the run-wide extraction throttle handed in through
// Deps. State is derived from the directory and bucket listings on each run.
package pipeline
