package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	if err := c.validateLidarr(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMusicBrainz() error {
	if err := validateHTTPURL("musicbrainz.base_url", c.MusicBrainz.BaseURL); err != nil {
		return err
	}
	if math.IsNaN(c.MusicBrainz.CacheMaxAgeDays) || math.IsInf(c.MusicBrainz.CacheMaxAgeDays, 0) {
		return errors.New("musicbrainz.cache_max_age_days must be a finite number")
	}
	if c.MusicBrainz.RequestTimeout < 0 {
		return errors.New("musicbrainz.request_timeout_seconds must be positive")
	}
	if c.MusicBrainz.MinIntervalMS < minMusicBrainzIntervalMS {
		return fmt.Errorf("musicbrainz.min_interval_ms must be at least %d", minMusicBrainzIntervalMS)
	}
	if c.MusicBrainz.MaxRetries < 0 || c.MusicBrainz.MaxRetries > maxMusicBrainzRetries {
		return fmt.Errorf("musicbrainz.max_retries must be between 0 and %d", maxMusicBrainzRetries)
	}
	return nil
}

func (c *Config) validateLidarr() error {
	if err := validateHTTPURL("lidarr.url", c.Lidarr.URL); err != nil {
		return err
	}
	if c.Lidarr.RequestTimeout < 0 {
		return errors.New("lidarr.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

// RequireLidarr reports whether the Lidarr section is complete enough to list the library.
// Commands that only read the cache skip this check.
func (c *Config) RequireLidarr() error {
	if c.Lidarr.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("lidarr.api_key is required. Set LIDARR_API_KEY env var or edit %s (create with 'cancomp config init')", defaultPath)
	}
	return nil
}

// WarnContact returns a hint when the MusicBrainz contact still has its placeholder value.
func (c *Config) WarnContact() string {
	if c.MusicBrainz.Contact == defaultContact {
		return defaultMusicBrainzContactH
	}
	return ""
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
