// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and decodes streams and container metadata.
// Prober narrows that to the whole-second duration the feed needs for
// artifacts that were downloaded on an earlier run.
package ffprobe
