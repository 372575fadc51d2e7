package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// MusicBrainz contains configuration for the MusicBrainz web service client.
type MusicBrainz struct {
	AppName         string  `toml:"app_name"`
	Version         string  `toml:"version"`
	Contact         string  `toml:"contact"`
	BaseURL         string  `toml:"base_url"`
	CacheMaxAgeDays float64 `toml:"cache_max_age_days"`
	RequestTimeout  int     `toml:"request_timeout_seconds"`
	MinIntervalMS   int     `toml:"min_interval_ms"`
	MaxRetries      int     `toml:"max_retries"`
}

// Lidarr contains configuration for the Lidarr library provider.
type Lidarr struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout_seconds"`
}

// Paths contains file locations used by a run.
type Paths struct {
	Cache       string `toml:"cache"`
	Overrides   string `toml:"overrides"`
	OutputDir   string `toml:"output_dir"`
	MetricsFile string `toml:"metrics_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cancomp.
//
// Configuration sections by subsystem:
//   - MusicBrainz: identification header, rate limits, and cache freshness
//   - Lidarr: owned-library provider connection
//   - Paths: cache database, overrides file, report and metrics output
//   - Logging: log format and level
type Config struct {
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	Lidarr      Lidarr      `toml:"lidarr"`
	Paths       Paths       `toml:"paths"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cancomp.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// UserAgent returns the identifying header MusicBrainz requires from every client.
func (c *Config) UserAgent() string {
	return fmt.Sprintf("%s/%s ( %s )", c.MusicBrainz.AppName, c.MusicBrainz.Version, c.MusicBrainz.Contact)
}

// MusicBrainzTimeout returns the per-request deadline for MusicBrainz calls.
func (c *Config) MusicBrainzTimeout() time.Duration {
	return time.Duration(c.MusicBrainz.RequestTimeout) * time.Second
}

// MusicBrainzMinInterval returns the minimum spacing between MusicBrainz requests.
func (c *Config) MusicBrainzMinInterval() time.Duration {
	return time.Duration(c.MusicBrainz.MinIntervalMS) * time.Millisecond
}

// LidarrTimeout returns the per-request deadline for Lidarr calls.
func (c *Config) LidarrTimeout() time.Duration {
	return time.Duration(c.Lidarr.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
