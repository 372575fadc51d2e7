package rgstats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cancomp/internal/logging"
	"cancomp/internal/musicbrainz"
)

// Status describes how a Result was obtained.
type Status string

const (
	StatusCached        Status = "cached"
	StatusFetchedForced Status = "fetched (forced)"
	StatusFetchedStale  Status = "fetched (cache expired)"
	StatusFetchedMiss   Status = "fetched (not in cache)"
)

// FailedStatus builds the status reported when a remote fetch fails.
func FailedStatus(kind string) Status {
	return Status(fmt.Sprintf("failed (%s)", kind))
}

// Failed reports whether s is a failure status.
func (s Status) Failed() bool {
	return strings.HasPrefix(string(s), "failed (")
}

// Result carries either statistics or the fault that prevented fetching them.
type Result struct {
	Stats  *ReleaseGroupStats
	Status Status
	Fault  error
}

// Store persists statistics between runs. Read returns nil without error when
// rgid has no entry.
type Store interface {
	Read(ctx context.Context, rgid string) (*ReleaseGroupStats, error)
	Upsert(ctx context.Context, stats ReleaseGroupStats) error
}

// ReleaseFetcher retrieves every release of a release group.
type ReleaseFetcher interface {
	FetchAllReleases(ctx context.Context, rgid string) ([]musicbrainz.Release, error)
}

// Service answers statistics lookups from the cache or MusicBrainz.
type Service struct {
	store   Store
	fetcher ReleaseFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires a Service.
func NewService(store Store, fetcher ReleaseFetcher, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "rgstats"),
		now:     time.Now,
	}
}

// GetStats returns statistics for rgid under policy. Remote failures are
// reported through Result.Status and Result.Fault; the returned error is
// non-nil only for cache store failures.
func (s *Service) GetStats(ctx context.Context, rgid string, policy FreshnessPolicy) (Result, error) {
	logger := logging.WithContext(logging.WithRGID(ctx, rgid), s.logger)

	cached, err := s.store.Read(ctx, rgid)
	if err != nil {
		return Result{}, err
	}

	var reason Status
	switch {
	case cached == nil:
		reason = StatusFetchedMiss
	case policy == AlwaysRefetch:
		reason = StatusFetchedForced
	case policy.Accepts(cached.FetchedAt, s.now()):
		logger.Debug("cache hit", logging.String("fetched_at", cached.FetchedAt.UTC().Format(time.RFC3339)))
		return Result{Stats: cached, Status: StatusCached}, nil
	default:
		reason = StatusFetchedStale
	}

	releases, err := s.fetcher.FetchAllReleases(ctx, rgid)
	if err != nil {
		kind := faultKind(err)
		logging.WarnWithContext(logger, "release group fetch failed", "rgstats_fetch_failed",
			logging.String("fault_kind", kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "report row will have blank MusicBrainz columns"),
			logging.String(logging.FieldErrorHint, "rerun later; cached entries are kept"),
		)
		return Result{Status: FailedStatus(kind), Fault: err}, nil
	}

	stats := Aggregate(rgid, releases, s.now().Truncate(time.Microsecond))
	if err := s.store.Upsert(ctx, stats); err != nil {
		return Result{}, err
	}
	logger.Debug("release group fetched",
		logging.String("status", string(reason)),
		logging.Int("release_count", stats.ReleaseCount),
	)
	return Result{Stats: &stats, Status: reason}, nil
}

func faultKind(err error) string {
	var remote *musicbrainz.RemoteError
	if errors.As(err, &remote) {
		return string(remote.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return string(musicbrainz.KindCanceled)
	}
	return "error"
}
