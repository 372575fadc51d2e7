// Package musicbrainz talks to the MusicBrainz web service.
//
// A single Throttle spaces every request at least one second apart across the
// process. Client.Get layers retry and backoff on top of it for 429 and 5xx
// responses and transient network faults, and FetchAllReleases pages through
// every release of a release group, decoding only the media fields the
// statistics need.
package musicbrainz
