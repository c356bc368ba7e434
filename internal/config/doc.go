// Package config loads, normalizes, and validates cdlconvert configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the CDLCONVERT_OUTPUT_DIR environment fallback. The
// Config type holds the defaults the convert command falls back to when a
// flag is not given, plus logging and history settings.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical format names, and clear validation errors.
package config
