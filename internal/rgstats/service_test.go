package rgstats

import (
	"context"
	"errors"
	"testing"
	"time"

	"cancomp/internal/logging"
	"cancomp/internal/musicbrainz"
)

type memoryStore struct {
	entries map[string]ReleaseGroupStats
	upserts int
	readErr error
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]ReleaseGroupStats{}}
}

func (m *memoryStore) Read(_ context.Context, rgid string) (*ReleaseGroupStats, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	entry, ok := m.entries[rgid]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *memoryStore) Upsert(_ context.Context, stats ReleaseGroupStats) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.upserts++
	m.entries[stats.RGID] = stats
	return nil
}

type stubFetcher struct {
	releases []musicbrainz.Release
	err      error
	calls    int
}

func (f *stubFetcher) FetchAllReleases(context.Context, string) ([]musicbrainz.Release, error) {
	f.calls++
	return f.releases, f.err
}

func twelveTrackRelease() []musicbrainz.Release {
	n := 12
	return []musicbrainz.Release{{Media: []musicbrainz.Medium{{TrackCount: &n}}}}
}

func newTestService(store Store, fetcher ReleaseFetcher, now time.Time) *Service {
	svc := NewService(store, fetcher, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetStatsFreshnessLaw(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		policy     FreshnessPolicy
		wantStatus Status
		wantCalls  int
	}{
		{5, StatusFetchedStale, 1},
		{20, StatusCached, 0},
		{-1, StatusCached, 0},
		{0, StatusFetchedForced, 1},
		{1e6, StatusCached, 0},
	}
	for _, tc := range tests {
		store := newMemoryStore()
		mode := 10
		store.entries["rg-A"] = ReleaseGroupStats{
			RGID:           "rg-A",
			ReleaseCount:   1,
			ModeTrackCount: &mode,
			Histogram:      map[int]int{10: 1},
			FetchedAt:      now.Add(-10 * 24 * time.Hour),
		}
		fetcher := &stubFetcher{releases: twelveTrackRelease()}
		svc := newTestService(store, fetcher, now)

		res, err := svc.GetStats(context.Background(), "rg-A", tc.policy)
		if err != nil {
			t.Fatalf("policy %v: GetStats returned error: %v", float64(tc.policy), err)
		}
		if res.Status != tc.wantStatus {
			t.Fatalf("policy %v: status %q, want %q", float64(tc.policy), res.Status, tc.wantStatus)
		}
		if fetcher.calls != tc.wantCalls {
			t.Fatalf("policy %v: %d fetches, want %d", float64(tc.policy), fetcher.calls, tc.wantCalls)
		}
		wantMode := 10
		if tc.wantCalls > 0 {
			wantMode = 12
			if !store.entries["rg-A"].FetchedAt.Equal(now) {
				t.Fatalf("policy %v: expected cache entry refreshed", float64(tc.policy))
			}
		}
		if res.Stats == nil || *res.Stats.ModeTrackCount != wantMode {
			t.Fatalf("policy %v: unexpected stats %+v", float64(tc.policy), res.Stats)
		}
	}
}

func TestGetStatsForcedFetchRepeatsImmediately(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newMemoryStore()
	fetcher := &stubFetcher{releases: twelveTrackRelease()}
	svc := newTestService(store, fetcher, now)

	first, err := svc.GetStats(context.Background(), "rg-A", AlwaysRefetch)
	if err != nil {
		t.Fatalf("first GetStats: %v", err)
	}
	if first.Status != StatusFetchedMiss {
		t.Fatalf("expected miss on empty cache, got %q", first.Status)
	}
	second, err := svc.GetStats(context.Background(), "rg-A", AlwaysRefetch)
	if err != nil {
		t.Fatalf("second GetStats: %v", err)
	}
	if second.Status != StatusFetchedForced || fetcher.calls != 2 {
		t.Fatalf("expected forced refetch, got %q after %d calls", second.Status, fetcher.calls)
	}
}

func TestGetStatsReportsRemoteFailureWithoutTouchingCache(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newMemoryStore()
	stale := ReleaseGroupStats{RGID: "rg-A", Histogram: map[int]int{}, FetchedAt: now.Add(-400 * 24 * time.Hour)}
	store.entries["rg-A"] = stale
	fetcher := &stubFetcher{err: &musicbrainz.RemoteError{Kind: musicbrainz.KindTimeout, Attempts: 6}}
	svc := newTestService(store, fetcher, now)

	res, err := svc.GetStats(context.Background(), "rg-A", 365)
	if err != nil {
		t.Fatalf("remote failure must not propagate, got %v", err)
	}
	if res.Status != "failed (timeout)" || res.Stats != nil || res.Fault == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.upserts != 0 || !store.entries["rg-A"].FetchedAt.Equal(stale.FetchedAt) {
		t.Fatal("expected cache entry left untouched")
	}
}

func TestGetStatsPropagatesCacheErrors(t *testing.T) {
	readFail := errors.New("disk gone")
	store := newMemoryStore()
	store.readErr = readFail
	svc := newTestService(store, &stubFetcher{}, time.Now())
	if _, err := svc.GetStats(context.Background(), "rg-A", 30); !errors.Is(err, readFail) {
		t.Fatalf("expected read error, got %v", err)
	}

	writeFail := errors.New("read-only")
	store = newMemoryStore()
	store.putErr = writeFail
	svc = newTestService(store, &stubFetcher{releases: twelveTrackRelease()}, time.Now())
	if _, err := svc.GetStats(context.Background(), "rg-A", 30); !errors.Is(err, writeFail) {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestFaultKind(t *testing.T) {
	if got := faultKind(&musicbrainz.RemoteError{Kind: musicbrainz.KindDecode}); got != "decode" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := faultKind(context.Canceled); got != "canceled" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := faultKind(errors.New("boom")); got != "error" {
		t.Fatalf("unexpected kind %q", got)
	}
}
