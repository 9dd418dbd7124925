// Package config loads, normalizes, and validates litman configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LITMAN_API_KEY. The Config type centralizes every knob the lanes and CLI
// need: the completion endpoint, per-lane timeouts, the analysis retry policy,
// and the shutdown grace window.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
