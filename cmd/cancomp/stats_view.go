package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"cancomp/internal/rgstats"
)

type statsView struct {
	RGID           string         `json:"rgid"`
	Status         string         `json:"status,omitempty"`
	FetchedAt      time.Time      `json:"fetched_at"`
	ReleaseCount   int            `json:"release_count"`
	ModeTrackCount *int           `json:"mode_track_count"`
	Histogram      map[string]int `json:"histogram"`
}

func newStatsView(stats *rgstats.ReleaseGroupStats, status rgstats.Status) statsView {
	hist := make(map[string]int, len(stats.Histogram))
	for tracks, releases := range stats.Histogram {
		hist[strconv.Itoa(tracks)] = releases
	}
	return statsView{
		RGID:           stats.RGID,
		Status:         string(status),
		FetchedAt:      stats.FetchedAt.UTC(),
		ReleaseCount:   stats.ReleaseCount,
		ModeTrackCount: stats.ModeTrackCount,
		Histogram:      hist,
	}
}

func printStats(out io.Writer, stats *rgstats.ReleaseGroupStats, status rgstats.Status, now time.Time) {
	fmt.Fprintf(out, "Release group: %s\n", stats.RGID)
	if status != "" {
		fmt.Fprintf(out, "Status:        %s\n", status)
	}
	age := now.Sub(stats.FetchedAt).Round(time.Second)
	fmt.Fprintf(out, "Fetched:       %s (%s ago)\n", stats.FetchedAt.Local().Format("2006-01-02 15:04:05"), age)
	fmt.Fprintf(out, "Releases:      %d\n", stats.ReleaseCount)
	fmt.Fprintf(out, "Mode tracks:   %s\n", formatOptionalInt(stats.ModeTrackCount))

	if len(stats.Histogram) == 0 {
		fmt.Fprintln(out, "No release reported a usable track count.")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Tracks", "Releases", "Share"},
		histogramRows(stats),
		[]columnAlignment{alignRight, alignRight, alignRight},
	))
}

func histogramRows(stats *rgstats.ReleaseGroupStats) [][]string {
	tracks := make([]int, 0, len(stats.Histogram))
	counted := 0
	for t, n := range stats.Histogram {
		tracks = append(tracks, t)
		counted += n
	}
	slices.Sort(tracks)

	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		n := stats.Histogram[t]
		label := strconv.Itoa(t)
		if stats.ModeTrackCount != nil && *stats.ModeTrackCount == t {
			label += " *"
		}
		rows = append(rows, []string{
			label,
			strconv.Itoa(n),
			fmt.Sprintf("%.0f%%", 100*float64(n)/float64(counted)),
		})
	}
	return rows
}
