// Package config loads, normalizes, and validates cancomp configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays environment variables such as
// LIDARR_API_KEY and CANCOMP_CACHE_PATH. The Config type centralizes the
// MusicBrainz identification and rate-limit settings, the Lidarr connection,
// and the cache, overrides, and report locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
