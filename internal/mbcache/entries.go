package mbcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"cancomp/internal/rgstats"
)

const selectColumns = "SELECT rgid, fetched_at, release_count, mode_track_count, histogram_json FROM rg_cache"

const upsertSQL = `INSERT INTO rg_cache (rgid, fetched_at, release_count, mode_track_count, histogram_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(rgid) DO UPDATE SET
    fetched_at = excluded.fetched_at,
    release_count = excluded.release_count,
    mode_track_count = excluded.mode_track_count,
    histogram_json = excluded.histogram_json`

type rowScanner interface {
	Scan(dest ...any) error
}

// Read returns the entry for rgid, or nil when none exists. No freshness
// filtering is applied.
func (s *Store) Read(ctx context.Context, rgid string) (*rgstats.ReleaseGroupStats, error) {
	var stats rgstats.ReleaseGroupStats
	err := retryOnBusy(ctx, func() error {
		var scanErr error
		stats, scanErr = scanStats(s.db.QueryRowContext(ctx, selectColumns+" WHERE rgid = ?", rgid))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, cacheError("read", rgid, err)
	}
	return &stats, nil
}

// Upsert inserts or replaces the entry for stats.RGID. The write is committed
// when Upsert returns.
func (s *Store) Upsert(ctx context.Context, stats rgstats.ReleaseGroupStats) error {
	histogram, err := encodeHistogram(stats.Histogram)
	if err != nil {
		return cacheError("upsert", stats.RGID, err)
	}
	var mode sql.NullInt64
	if stats.ModeTrackCount != nil {
		mode = sql.NullInt64{Int64: int64(*stats.ModeTrackCount), Valid: true}
	}
	err = s.execWithRetry(ctx, upsertSQL,
		stats.RGID,
		encodeTime(stats.FetchedAt),
		stats.ReleaseCount,
		mode,
		histogram,
	)
	if err != nil {
		return cacheError("upsert", stats.RGID, err)
	}
	return nil
}

// List returns every entry ordered by release group id.
func (s *Store) List(ctx context.Context) ([]rgstats.ReleaseGroupStats, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY rgid")
	if err != nil {
		return nil, cacheError("list", "", err)
	}
	defer rows.Close()

	var entries []rgstats.ReleaseGroupStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, cacheError("list", "", err)
		}
		entries = append(entries, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, cacheError("list", "", err)
	}
	return entries, nil
}

// Count returns the number of cached release groups.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM rg_cache").Scan(&count)
	})
	if err != nil {
		return 0, cacheError("count", "", err)
	}
	return count, nil
}

func scanStats(row rowScanner) (rgstats.ReleaseGroupStats, error) {
	var (
		stats     rgstats.ReleaseGroupStats
		fetchedAt float64
		mode      sql.NullInt64
		histogram string
	)
	if err := row.Scan(&stats.RGID, &fetchedAt, &stats.ReleaseCount, &mode, &histogram); err != nil {
		return rgstats.ReleaseGroupStats{}, err
	}
	hist, err := decodeHistogram(histogram)
	if err != nil {
		return rgstats.ReleaseGroupStats{}, err
	}
	stats.Histogram = hist
	stats.FetchedAt = decodeTime(fetchedAt)
	if mode.Valid {
		m := int(mode.Int64)
		stats.ModeTrackCount = &m
	}
	return stats, nil
}

// Histograms are stored as JSON objects keyed by the decimal track count.
func encodeHistogram(hist map[int]int) (string, error) {
	keyed := make(map[string]int, len(hist))
	for count, freq := range hist {
		keyed[strconv.Itoa(count)] = freq
	}
	data, err := json.Marshal(keyed)
	if err != nil {
		return "", fmt.Errorf("encode histogram: %w", err)
	}
	return string(data), nil
}

func decodeHistogram(raw string) (map[int]int, error) {
	var keyed map[string]int
	if err := json.Unmarshal([]byte(raw), &keyed); err != nil {
		return nil, fmt.Errorf("decode histogram: %w", err)
	}
	hist := make(map[int]int, len(keyed))
	for key, freq := range keyed {
		count, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode histogram key %q: %w", key, err)
		}
		hist[count] = freq
	}
	return hist, nil
}

// fetched_at is stored as fractional Unix seconds at microsecond precision.
func encodeTime(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func decodeTime(seconds float64) time.Time {
	return time.UnixMicro(int64(math.Round(seconds * 1e6)))
}
