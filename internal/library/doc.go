// Package library lists the albums a user owns, keyed by MusicBrainz release
// group.
//
// The Lidarr provider counts track files per album and folds albums that share
// a release group into one Item. Albums Lidarr has not matched to a release
// group are skipped because nothing downstream can compare them.
package library
