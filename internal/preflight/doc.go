// Package preflight provides readiness checks for the filesystem paths and
// services a comparison run depends on.
//
// "cancomp doctor" prints every result; "cancomp run" calls RunAll and stops
// before touching MusicBrainz when a required check fails, since a run that
// cannot write its report wastes the rate-limited lookups it already made.
package preflight
