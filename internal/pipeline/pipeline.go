package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cancomp/internal/compare"
	"cancomp/internal/config"
	"cancomp/internal/library"
	"cancomp/internal/logging"
	"cancomp/internal/mbcache"
	"cancomp/internal/metrics"
	"cancomp/internal/musicbrainz"
	"cancomp/internal/overrides"
	"cancomp/internal/report"
	"cancomp/internal/rgstats"
)

// LibrarySource lists owned release groups.
type LibrarySource interface {
	FetchItems(ctx context.Context, opts library.Options) ([]library.Item, error)
}

// Options configures a run. Zero limits mean no limit.
type Options struct {
	Config *config.Config

	// MaxAgeDays overrides musicbrainz.cache_max_age_days when set.
	MaxAgeDays    *float64
	LimitAlbums   int
	LimitRGIDs    int
	OutPath       string
	OverridesPath string
	SortOverrides bool

	Stdout io.Writer
	Logger *slog.Logger

	// Library and Fetcher replace the Lidarr and MusicBrainz clients built
	// from Config.
	Library LibrarySource
	Fetcher rgstats.ReleaseFetcher
	Now     func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	CorrelationID string
	ReportPath    string
	Rows          int
	Failed        int
	Statuses      map[rgstats.Status]int
}

// Run executes one comparison. Remote lookup failures leave blank report
// columns; cache failures and cancellation abort the run.
func Run(ctx context.Context, opts Options) (summary Summary, err error) {
	cfg := opts.Config
	if cfg == nil {
		return Summary{}, errors.New("pipeline: config is required")
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	lock, err := acquireLock(cfg.Paths.Cache)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = lock.Unlock() }()

	summary.CorrelationID = uuid.NewString()
	summary.Statuses = make(map[rgstats.Status]int)
	ctx = logging.WithCorrelationID(ctx, summary.CorrelationID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "pipeline"))
	started := now()

	runMetrics := metrics.New(nil)
	cacheEntries := 0
	defer func() {
		if cfg.Paths.MetricsFile == "" {
			return
		}
		runMetrics.Finish(err == nil, cacheEntries, now())
		if writeErr := runMetrics.WriteTextfile(cfg.Paths.MetricsFile); writeErr != nil {
			logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
				logging.Error(writeErr),
				logging.String("path", cfg.Paths.MetricsFile),
				logging.String(logging.FieldImpact, "run metrics unavailable to node exporter"),
				logging.String(logging.FieldErrorHint, "check paths.metrics_file is writable"),
			)
		}
	}()

	overridesPath := cfg.Paths.Overrides
	if opts.OverridesPath != "" {
		overridesPath = opts.OverridesPath
	}
	canon, err := overrides.Load(overridesPath)
	if err != nil {
		return summary, err
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	source := opts.Library
	if source == nil {
		if source, err = newLidarr(cfg, opts.Logger); err != nil {
			return summary, err
		}
	}
	items, err := source.FetchItems(ctx, library.Options{LimitAlbums: opts.LimitAlbums})
	if err != nil {
		return summary, fmt.Errorf("fetch library: %w", err)
	}
	if opts.LimitRGIDs > 0 && len(items) > opts.LimitRGIDs {
		items = items[:opts.LimitRGIDs]
	}
	logger.Info("library loaded",
		logging.Int("items", len(items)),
		logging.Int("overrides", len(canon)),
	)

	store, err := mbcache.Open(ctx, cfg.Paths.Cache)
	if err != nil {
		return summary, err
	}
	defer store.Close()

	fetcher := opts.Fetcher
	if fetcher == nil {
		if fetcher, err = NewMusicBrainz(cfg, opts.Logger, runMetrics); err != nil {
			return summary, err
		}
	}
	service := rgstats.NewService(store, fetcher, opts.Logger)

	maxAgeDays := cfg.MusicBrainz.CacheMaxAgeDays
	if opts.MaxAgeDays != nil {
		maxAgeDays = *opts.MaxAgeDays
	}
	policy, err := rgstats.ParseFreshnessPolicy(maxAgeDays)
	if err != nil {
		return summary, err
	}
	fmt.Fprintf(stdout, "MB cache policy: %s\n", policy)

	colorize := ShouldColorize(stdout)
	stats := make(map[string]*rgstats.ReleaseGroupStats, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := service.GetStats(ctx, item.RGID, policy)
		if err != nil {
			return summary, err
		}
		if res.Fault != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}
		runMetrics.ObserveLookup(res.Status)
		summary.Statuses[res.Status]++
		if res.Status.Failed() {
			summary.Failed++
		}
		if res.Stats != nil {
			stats[item.RGID] = res.Stats
		}
		fmt.Fprintln(stdout, StatusLine(i+1, len(items), res.Status, item.RGID, colorize))
	}

	if n, countErr := store.Count(ctx); countErr == nil {
		cacheEntries = n
	}

	rows := compare.BuildRows(items, stats, canon)
	outPath := opts.OutPath
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.OutputDir, report.DefaultFileName(started))
	}
	if err := report.WriteCSV(outPath, rows); err != nil {
		return summary, err
	}
	summary.ReportPath = outPath
	summary.Rows = len(rows)
	fmt.Fprintf(stdout, "Wrote %d rows to %s\n", len(rows), outPath)

	if opts.SortOverrides {
		if err := overrides.WriteSorted(overridesPath, canon, library.Labels(items)); err != nil {
			return summary, err
		}
		fmt.Fprintf(stdout, "Sorted overrides written to %s\n", overridesPath)
	}

	logger.Info("run complete",
		logging.Int("rows", summary.Rows),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", now().Sub(started)),
		logging.String("report", outPath),
	)
	return summary, nil
}

func newLidarr(cfg *config.Config, logger *slog.Logger) (*library.LidarrClient, error) {
	if err := cfg.RequireLidarr(); err != nil {
		return nil, err
	}
	return library.NewLidarr(library.Config{
		BaseURL: cfg.Lidarr.URL,
		APIKey:  cfg.Lidarr.APIKey,
		Timeout: cfg.LidarrTimeout(),
		Logger:  logger,
	})
}

// NewMusicBrainz builds the MusicBrainz client described by cfg.
func NewMusicBrainz(cfg *config.Config, logger *slog.Logger, observer musicbrainz.Observer) (*musicbrainz.Client, error) {
	return musicbrainz.New(musicbrainz.Config{
		BaseURL:    cfg.MusicBrainz.BaseURL,
		UserAgent:  cfg.UserAgent(),
		Timeout:    cfg.MusicBrainzTimeout(),
		MaxRetries: cfg.MusicBrainz.MaxRetries,
		Throttle:   musicbrainz.NewThrottle(cfg.MusicBrainzMinInterval()),
		Logger:     logger,
		Observer:   observer,
	})
}
