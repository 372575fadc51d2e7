package testsupport

import (
	"path/filepath"
	"testing"

	"cancomp/internal/config"
)

// EnvKeys lists the environment variables config.Load reads.
var EnvKeys = []string{
	"CANCOMP_LIDARR_URL",
	"LIDARR_API_KEY",
	"CANCOMP_MB_CONTACT",
	"CANCOMP_CACHE_PATH",
	"CANCOMP_LOG_LEVEL",
	"CANCOMP_LOG_FORMAT",
}

// IsolateEnv blanks every config environment variable and points HOME at a
// fresh temp directory, which it returns.
func IsolateEnv(t testing.TB) string {
	t.Helper()
	for _, key := range EnvKeys {
		t.Setenv(key, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose files live under a unique temp directory.
// The contact is set so MusicBrainz identification checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.MusicBrainz.Contact = "tests@example.com"
	cfgVal.Lidarr.APIKey = "test"
	cfgVal.Paths.Cache = filepath.Join(base, "cache", "mb_cache.sqlite")
	cfgVal.Paths.Overrides = filepath.Join(base, "overrides.toml")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLidarr points the config at a Lidarr instance.
func WithLidarr(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lidarr.URL = url
		b.cfg.Lidarr.APIKey = apiKey
	}
}

// WithMusicBrainz points the config at a MusicBrainz-compatible server and
// disables retries.
func WithMusicBrainz(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.BaseURL = baseURL
		b.cfg.MusicBrainz.MaxRetries = 0
	}
}

// WithMetricsFile enables the metrics textfile under the temp directory.
func WithMetricsFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsFile = filepath.Join(b.baseDir, "metrics", "cancomp.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Overrides)
}
