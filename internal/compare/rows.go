package compare

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cancomp/internal/library"
	"cancomp/internal/overrides"
	"cancomp/internal/rgstats"
)

// Canon sources.
const (
	SourceOverride = "override"
	SourceMBMode   = "mb_mode"
)

// Row is the comparison result for one owned release group. Pointer fields
// are nil when MusicBrainz statistics are unavailable.
type Row struct {
	RGID               string
	Artist             string
	Title              string
	OwnedTrackCount    int
	CanonTrackCounts   []int
	CanonSource        string
	MinOwnedMinusCanon int
	OwnedMatchesCanon  bool

	MBModeTrackCount            *int
	DiffOwnedMinusMode          *int
	ModeReleaseCount            *int
	OwnedTrackCountReleaseCount *int
	MBReleaseCount              *int
	Histogram                   map[int]int

	OverrideSuggestion string
}

// BuildRows produces one row per item, in item order. stats may lack entries
// for release groups whose lookup failed.
func BuildRows(items []library.Item, stats map[string]*rgstats.ReleaseGroupStats, canon overrides.Overrides) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, buildRow(item, stats[item.RGID], canon))
	}
	return rows
}

func buildRow(item library.Item, st *rgstats.ReleaseGroupStats, canon overrides.Overrides) Row {
	row := Row{
		RGID:            item.RGID,
		Artist:          item.Artist,
		Title:           item.Title,
		OwnedTrackCount: item.OwnedTrackCount,
		Histogram:       map[int]int{},
	}

	var mode *int
	if st != nil {
		mode = st.ModeTrackCount
		row.Histogram = st.Histogram
		row.MBReleaseCount = intPtr(st.ReleaseCount)
		row.OwnedTrackCountReleaseCount = intPtr(st.Histogram[item.OwnedTrackCount])
	}
	if mode != nil {
		row.MBModeTrackCount = intPtr(*mode)
		row.DiffOwnedMinusMode = intPtr(item.OwnedTrackCount - *mode)
		row.ModeReleaseCount = intPtr(row.Histogram[*mode])
	}

	if counts := canon[item.RGID]; len(counts) > 0 {
		row.CanonTrackCounts = slices.Clone(counts)
		row.CanonSource = SourceOverride
	} else {
		row.CanonSource = SourceMBMode
		if mode != nil {
			row.CanonTrackCounts = []int{*mode}
		}
	}

	row.OwnedMatchesCanon = true
	if len(row.CanonTrackCounts) > 0 {
		row.OwnedMatchesCanon = slices.Contains(row.CanonTrackCounts, item.OwnedTrackCount)
		row.MinOwnedMinusCanon = item.OwnedTrackCount - slices.Max(row.CanonTrackCounts)
	}

	row.OverrideSuggestion = OverrideSuggestion(item.RGID, item.OwnedTrackCount, mode, item.Label())
	return row
}

// OverrideSuggestion renders an overrides file line accepting the owned count
// and, when different, the MusicBrainz mode.
func OverrideSuggestion(rgid string, owned int, mode *int, label string) string {
	values := []string{strconv.Itoa(owned)}
	if mode != nil && *mode != owned {
		values = append(values, strconv.Itoa(*mode))
	}
	return fmt.Sprintf("%s = [%s] #%s", strconv.Quote(rgid), strings.Join(values, ", "), label)
}

func intPtr(v int) *int { return &v }
