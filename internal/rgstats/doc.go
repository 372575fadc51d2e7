// Package rgstats turns a MusicBrainz release group into track-count
// statistics and decides when cached statistics may be reused.
//
// Aggregate reduces releases to a histogram and its mode. Service.GetStats
// combines the cache store with the remote fetcher under a FreshnessPolicy and
// reports how each answer was obtained. Remote failures are reported in the
// Result so one bad release group never stops a run; cache failures are
// returned as errors.
package rgstats
