package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"cancomp/internal/compare"
	"cancomp/internal/fileutil"
)

const bom = "\ufeff"

// Columns is the header row, in output order.
var Columns = []string{
	"rgid",
	"artist",
	"title",
	"owned_track_count",
	"canon_track_counts",
	"min_owned_minus_canon",
	"owned_matches_canon",
	"canon_source",
	"mb_mode_track_count",
	"diff_owned_minus_mode",
	"mode_release_count",
	"owned_trackcount_release_count",
	"mb_release_count",
	"mb_histogram_tracks_releases_json",
	"override_suggestion",
}

// DefaultFileName names a report after the time of the run.
func DefaultFileName(now time.Time) string {
	return "cancomp_" + now.Format("2006-01-02_15-04-05") + ".csv"
}

// WriteCSV renders rows and replaces path with the result.
func WriteCSV(path string, rows []compare.Row) error {
	data, err := Encode(rows)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Encode renders rows including the byte order mark and header.
func Encode(rows []compare.Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true
	if err := writer.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", row.RGID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("csv writer: %w", err)
	}
	return buf.Bytes(), nil
}

func record(row compare.Row) []string {
	return []string{
		row.RGID,
		row.Artist,
		row.Title,
		strconv.Itoa(row.OwnedTrackCount),
		joinInts(row.CanonTrackCounts),
		strconv.Itoa(row.MinOwnedMinusCanon),
		formatBool(row.OwnedMatchesCanon),
		row.CanonSource,
		formatIntPtr(row.MBModeTrackCount),
		formatIntPtr(row.DiffOwnedMinusMode),
		formatIntPtr(row.ModeReleaseCount),
		formatIntPtr(row.OwnedTrackCountReleaseCount),
		formatIntPtr(row.MBReleaseCount),
		HistogramJSON(row.Histogram),
		row.OverrideSuggestion,
	}
}

// HistogramJSON renders a histogram as a JSON object keyed by track count,
// ordered numerically: {"9": 1, "12": 4}.
func HistogramJSON(hist map[int]int) string {
	keys := make([]int, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %d", strconv.Itoa(k), hist[k])
	}
	b.WriteByte('}')
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// formatIntPtr formats an optional count, returning empty string for nil.
func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
