// Package config loads, normalizes, and validates tubecast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// storage credentials (R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and their AWS_*
// equivalents). Per-channel overrides are resolved against the [pipeline]
// defaults through PolicyFor so the pipeline only ever sees a flat Policy.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
