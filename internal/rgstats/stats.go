package rgstats

import (
	"time"

	"cancomp/internal/musicbrainz"
)

// ReleaseGroupStats summarises the track counts of every release in a release group.
type ReleaseGroupStats struct {
	RGID         string
	ReleaseCount int
	// ModeTrackCount is nil when no release had a determinable track count.
	ModeTrackCount *int
	// Histogram maps a track count to the number of releases with that count.
	Histogram map[int]int
	FetchedAt time.Time
}

// Aggregate builds statistics for rgid from its releases. Every release counts
// toward ReleaseCount; only releases with a determinable total enter the histogram.
func Aggregate(rgid string, releases []musicbrainz.Release, fetchedAt time.Time) ReleaseGroupStats {
	hist := make(map[int]int)
	for _, rel := range releases {
		if total, ok := rel.TrackTotal(); ok {
			hist[total]++
		}
	}
	return ReleaseGroupStats{
		RGID:           rgid,
		ReleaseCount:   len(releases),
		ModeTrackCount: Mode(hist),
		Histogram:      hist,
		FetchedAt:      fetchedAt,
	}
}

// Mode returns the most frequent track count, preferring the smallest count on
// ties, or nil for an empty histogram.
func Mode(hist map[int]int) *int {
	var (
		best     int
		bestFreq int
		found    bool
	)
	for count, freq := range hist {
		if !found || freq > bestFreq || (freq == bestFreq && count < best) {
			best, bestFreq, found = count, freq, true
		}
	}
	if !found {
		return nil
	}
	return &best
}

// ModeReleaseCount returns how many releases share the mode track count.
func (s ReleaseGroupStats) ModeReleaseCount() int {
	if s.ModeTrackCount == nil {
		return 0
	}
	return s.Histogram[*s.ModeTrackCount]
}
