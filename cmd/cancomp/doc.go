// Package main hosts the cancomp CLI.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the logger from it, and hands the real work to internal packages: pipeline
// for comparison runs, rgstats and mbcache for single lookups and cache
// inspection, overrides for file maintenance, and preflight for doctor.
package main
