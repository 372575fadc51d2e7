package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMusicBrainz()
	c.normalizeLidarr()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Cache) == "" {
		c.Paths.Cache = defaultCachePath
	}
	if c.Paths.Cache, err = expandPath(c.Paths.Cache); err != nil {
		return fmt.Errorf("paths.cache: %w", err)
	}
	if strings.TrimSpace(c.Paths.Overrides) == "" {
		c.Paths.Overrides = defaultOverridesPath
	}
	if c.Paths.Overrides, err = expandPath(c.Paths.Overrides); err != nil {
		return fmt.Errorf("paths.overrides: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	c.Paths.MetricsFile = strings.TrimSpace(c.Paths.MetricsFile)
	if c.Paths.MetricsFile != "" {
		if c.Paths.MetricsFile, err = expandPath(c.Paths.MetricsFile); err != nil {
			return fmt.Errorf("paths.metrics_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.AppName = strings.TrimSpace(c.MusicBrainz.AppName)
	if c.MusicBrainz.AppName == "" {
		c.MusicBrainz.AppName = defaultAppName
	}
	c.MusicBrainz.Version = strings.TrimSpace(c.MusicBrainz.Version)
	if c.MusicBrainz.Version == "" {
		c.MusicBrainz.Version = defaultAppVersion
	}
	c.MusicBrainz.Contact = strings.TrimSpace(c.MusicBrainz.Contact)
	if c.MusicBrainz.Contact == "" {
		c.MusicBrainz.Contact = defaultContact
	}
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	if c.MusicBrainz.RequestTimeout == 0 {
		c.MusicBrainz.RequestTimeout = defaultMBRequestTimeout
	}
	if c.MusicBrainz.MinIntervalMS == 0 {
		c.MusicBrainz.MinIntervalMS = defaultMBMinIntervalMS
	}
}

func (c *Config) normalizeLidarr() {
	c.Lidarr.URL = strings.TrimRight(strings.TrimSpace(c.Lidarr.URL), "/")
	if c.Lidarr.URL == "" {
		c.Lidarr.URL = defaultLidarrURL
	}
	c.Lidarr.APIKey = strings.TrimSpace(c.Lidarr.APIKey)
	if c.Lidarr.RequestTimeout == 0 {
		c.Lidarr.RequestTimeout = defaultLidarrTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
