// Package overrides reads and rewrites the user-maintained canonical track
// count file.
//
// The file is TOML with a single [canon] table mapping a release group ID to
// the track counts the user accepts as canonical. An empty list accepts any
// count.
package overrides
