package report_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cancomp/internal/compare"
	"cancomp/internal/report"
)

func intPtr(v int) *int { return &v }

func TestHistogramJSONSortsNumerically(t *testing.T) {
	got := report.HistogramJSON(map[int]int{12: 4, 9: 1, 100: 2})
	want := `{"9": 1, "12": 4, "100": 2}`
	if got != want {
		t.Fatalf("HistogramJSON = %s, want %s", got, want)
	}
	if got := report.HistogramJSON(nil); got != "{}" {
		t.Fatalf("empty histogram = %s", got)
	}
}

func TestDefaultFileName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if got := report.DefaultFileName(ts); got != "cancomp_2026-03-04_05-06-07.csv" {
		t.Fatalf("DefaultFileName = %s", got)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	rows := []compare.Row{
		{
			RGID:                        "rg-a",
			Artist:                      "Alpha, The",
			Title:                       "First",
			OwnedTrackCount:             10,
			CanonTrackCounts:            []int{10, 12},
			CanonSource:                 compare.SourceOverride,
			MinOwnedMinusCanon:          -2,
			OwnedMatchesCanon:           true,
			MBModeTrackCount:            intPtr(12),
			DiffOwnedMinusMode:          intPtr(-2),
			ModeReleaseCount:            intPtr(4),
			OwnedTrackCountReleaseCount: intPtr(1),
			MBReleaseCount:              intPtr(5),
			Histogram:                   map[int]int{12: 4, 10: 1},
			OverrideSuggestion:          `"rg-a" = [10, 12] #Alpha, The - First`,
		},
		{
			RGID:               "rg-b",
			OwnedTrackCount:    7,
			CanonSource:        compare.SourceMBMode,
			OwnedMatchesCanon:  true,
			Histogram:          map[int]int{},
			OverrideSuggestion: `"rg-b" = [7] #`,
		},
	}

	if err := report.WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "\ufeff") {
		t.Fatal("expected byte order mark")
	}
	if !strings.Contains(text, "\r\n") {
		t.Fatal("expected CRLF line endings")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], "|") != strings.Join(report.Columns, "|") {
		t.Fatalf("unexpected header: %v", records[0])
	}

	first := records[1]
	checks := map[int]string{
		1:  "Alpha, The",
		4:  "10, 12",
		5:  "-2",
		6:  "True",
		7:  "override",
		8:  "12",
		12: "5",
		13: `{"10": 1, "12": 4}`,
		14: `"rg-a" = [10, 12] #Alpha, The - First`,
	}
	for idx, want := range checks {
		if first[idx] != want {
			t.Fatalf("column %s = %q, want %q", report.Columns[idx], first[idx], want)
		}
	}

	second := records[2]
	for _, idx := range []int{4, 8, 9, 10, 11, 12} {
		if second[idx] != "" {
			t.Fatalf("column %s = %q, want blank", report.Columns[idx], second[idx])
		}
	}
	if second[13] != "{}" {
		t.Fatalf("expected empty histogram, got %q", second[13])
	}
}
