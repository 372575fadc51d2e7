// Package pipeline runs one comparison end to end: list the owned library,
// look up each release group through the cached MusicBrainz service, merge
// overrides, and write the CSV report.
//
// Runs sharing a cache file are serialized by an advisory lock next to the
// cache. Progress lines go to Options.Stdout; structured logs carry a per-run
// correlation ID.
package pipeline
