package preflight

import (
	"context"
	"path/filepath"

	"cancomp/internal/config"
)

// Result reports the outcome of a single preflight check. Advisory failures
// are shown but never block a run.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// Blocking reports whether r should stop a run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Advisory
}

// Options selects the checks RunAll performs.
type Options struct {
	// SkipLidarr omits the network check, for callers that are about to
	// contact Lidarr anyway.
	SkipLidarr bool
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckContact(cfg),
		CheckCreatableDirectory("Cache directory", filepath.Dir(cfg.Paths.Cache)),
		CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.MetricsFile != "" {
		results = append(results, CheckCreatableDirectory("Metrics directory", filepath.Dir(cfg.Paths.MetricsFile)))
	}
	results = append(results, CheckCache(ctx, cfg.Paths.Cache))

	if !opts.SkipLidarr {
		results = append(results, CheckLidarr(ctx, cfg.Lidarr))
	}
	return results
}

// FirstBlocking returns the first result that should stop a run.
func FirstBlocking(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Blocking() {
			return r, true
		}
	}
	return Result{}, false
}
