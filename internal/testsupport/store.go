package testsupport

import (
	"context"
	"testing"

	"cancomp/internal/config"
	"cancomp/internal/mbcache"
	"cancomp/internal/rgstats"
)

// MustOpenCache opens the config's cache store and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *mbcache.Store {
	t.Helper()

	store, err := mbcache.Open(context.Background(), cfg.Paths.Cache)
	if err != nil {
		t.Fatalf("mbcache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedStats writes entries into store.
func SeedStats(t testing.TB, store *mbcache.Store, entries ...rgstats.ReleaseGroupStats) {
	t.Helper()

	for _, e := range entries {
		if err := store.Upsert(context.Background(), e); err != nil {
			t.Fatalf("store.Upsert %s: %v", e.RGID, err)
		}
	}
}
