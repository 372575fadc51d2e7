// Package compare merges owned library items with MusicBrainz statistics and
// user overrides into one comparison row per release group.
package compare
