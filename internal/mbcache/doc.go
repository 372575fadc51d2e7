// Package mbcache persists release group statistics in a SQLite file.
//
// One row per release group holds the last successful fetch; writes are
// single-statement upserts so readers never see a half-written row. The store
// does not judge freshness, callers compare FetchedAt against their own
// policy. Every failure is reported as a *CacheError.
package mbcache
