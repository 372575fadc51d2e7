// Package metrics records per-run counters for MusicBrainz traffic and cache
// lookups on a dedicated Prometheus registry. A run can persist them as a
// node-exporter textfile so scheduled runs can be graphed.
package metrics
