package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cancomp/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"CANCOMP_LIDARR_URL",
		"LIDARR_API_KEY",
		"CANCOMP_MB_CONTACT",
		"CANCOMP_CACHE_PATH",
		"CANCOMP_LOG_LEVEL",
		"CANCOMP_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(home, ".cache", "cancomp", "mb_cache.sqlite")
	if cfg.Paths.Cache != wantCache {
		t.Fatalf("unexpected cache path: got %q want %q", cfg.Paths.Cache, wantCache)
	}
	if cfg.Paths.Overrides != filepath.Join(home, ".config", "cancomp", "overrides.toml") {
		t.Fatalf("unexpected overrides path: %q", cfg.Paths.Overrides)
	}
	if cfg.MusicBrainz.CacheMaxAgeDays != 365 {
		t.Fatalf("unexpected cache max age: %v", cfg.MusicBrainz.CacheMaxAgeDays)
	}
	if cfg.MusicBrainz.MaxRetries != 5 {
		t.Fatalf("unexpected max retries: %d", cfg.MusicBrainz.MaxRetries)
	}
	if got := cfg.MusicBrainzMinInterval().Seconds(); got != 1 {
		t.Fatalf("unexpected min interval: %vs", got)
	}
	if got := cfg.MusicBrainzTimeout().Seconds(); got != 60 {
		t.Fatalf("unexpected request timeout: %vs", got)
	}
	if cfg.UserAgent() != "CanComp/0.0.0 ( unknown )" {
		t.Fatalf("unexpected user agent: %q", cfg.UserAgent())
	}
	if cfg.WarnContact() == "" {
		t.Fatal("expected placeholder contact warning")
	}
	if cfg.Paths.MetricsFile != "" {
		t.Fatalf("expected metrics file disabled by default, got %q", cfg.Paths.MetricsFile)
	}
	if err := cfg.RequireLidarr(); err == nil {
		t.Fatal("expected missing lidarr api key to be reported")
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	home := isolateEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	payload := struct {
		MusicBrainz struct {
			Contact         string  `toml:"contact"`
			Version         string  `toml:"version"`
			CacheMaxAgeDays float64 `toml:"cache_max_age_days"`
			MinIntervalMS   int     `toml:"min_interval_ms"`
		} `toml:"musicbrainz"`
		Lidarr struct {
			URL    string `toml:"url"`
			APIKey string `toml:"api_key"`
		} `toml:"lidarr"`
		Paths struct {
			Cache       string `toml:"cache"`
			MetricsFile string `toml:"metrics_file"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}{}
	payload.MusicBrainz.Contact = "me@example.com"
	payload.MusicBrainz.Version = "1.2.3"
	payload.MusicBrainz.CacheMaxAgeDays = -1
	payload.MusicBrainz.MinIntervalMS = 1500
	payload.Lidarr.URL = "http://lidarr.lan:8686/"
	payload.Lidarr.APIKey = "file-key"
	payload.Paths.Cache = "~/data/mb.sqlite"
	payload.Paths.MetricsFile = "~/metrics/cancomp.prom"
	payload.Logging.Format = "JSON"
	payload.Logging.Level = "Debug"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.UserAgent() != "CanComp/1.2.3 ( me@example.com )" {
		t.Fatalf("unexpected user agent: %q", cfg.UserAgent())
	}
	if cfg.MusicBrainz.CacheMaxAgeDays != -1 {
		t.Fatalf("expected negative max age preserved, got %v", cfg.MusicBrainz.CacheMaxAgeDays)
	}
	if cfg.Lidarr.URL != "http://lidarr.lan:8686" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Lidarr.URL)
	}
	if cfg.Paths.Cache != filepath.Join(home, "data", "mb.sqlite") {
		t.Fatalf("unexpected cache path: %q", cfg.Paths.Cache)
	}
	if cfg.Paths.MetricsFile != filepath.Join(home, "metrics", "cancomp.prom") {
		t.Fatalf("unexpected metrics path: %q", cfg.Paths.MetricsFile)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if err := cfg.RequireLidarr(); err != nil {
		t.Fatalf("RequireLidarr returned error: %v", err)
	}
	if cfg.WarnContact() != "" {
		t.Fatalf("expected no contact warning, got %q", cfg.WarnContact())
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	home := isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	contents := "[lidarr]\napi_key = \"file-key\"\n[musicbrainz]\ncontact = \"file@example.com\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LIDARR_API_KEY", "env-key")
	t.Setenv("CANCOMP_LIDARR_URL", "https://music.example.com")
	t.Setenv("CANCOMP_MB_CONTACT", "env@example.com")
	t.Setenv("CANCOMP_CACHE_PATH", "~/env-cache.sqlite")
	t.Setenv("CANCOMP_LOG_LEVEL", "warn")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Lidarr.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %q", cfg.Lidarr.APIKey)
	}
	if cfg.Lidarr.URL != "https://music.example.com" {
		t.Fatalf("expected env lidarr url, got %q", cfg.Lidarr.URL)
	}
	if cfg.MusicBrainz.Contact != "env@example.com" {
		t.Fatalf("expected env contact, got %q", cfg.MusicBrainz.Contact)
	}
	if cfg.Paths.Cache != filepath.Join(home, "env-cache.sqlite") {
		t.Fatalf("expected env cache path, got %q", cfg.Paths.Cache)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"interval below limit", func(c *config.Config) { c.MusicBrainz.MinIntervalMS = 200 }, "min_interval_ms"},
		{"retries too high", func(c *config.Config) { c.MusicBrainz.MaxRetries = 50 }, "max_retries"},
		{"negative retries", func(c *config.Config) { c.MusicBrainz.MaxRetries = -1 }, "max_retries"},
		{"negative timeout", func(c *config.Config) { c.MusicBrainz.RequestTimeout = -5 }, "request_timeout_seconds"},
		{"bad base url", func(c *config.Config) { c.MusicBrainz.BaseURL = "ftp://musicbrainz.org" }, "musicbrainz.base_url"},
		{"lidarr without host", func(c *config.Config) { c.Lidarr.URL = "http://" }, "lidarr.url"},
		{"nan max age", func(c *config.Config) { c.MusicBrainz.CacheMaxAgeDays = math.NaN() }, "cache_max_age_days"},
		{"infinite max age", func(c *config.Config) { c.MusicBrainz.CacheMaxAgeDays = math.Inf(1) }, "cache_max_age_days"},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[musicbrainz\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(configPath); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.MusicBrainz.Contact != "you@example.com" {
		t.Fatalf("unexpected sample contact: %q", cfg.MusicBrainz.Contact)
	}
	if cfg.MusicBrainz.CacheMaxAgeDays != 365 {
		t.Fatalf("unexpected sample max age: %v", cfg.MusicBrainz.CacheMaxAgeDays)
	}
}
