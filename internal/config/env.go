package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverlay lists the environment variables that take precedence over the file.
type envOverlay struct {
	LidarrURL    string `env:"CANCOMP_LIDARR_URL"`
	LidarrAPIKey string `env:"LIDARR_API_KEY"`
	Contact      string `env:"CANCOMP_MB_CONTACT"`
	CachePath    string `env:"CANCOMP_CACHE_PATH"`
	LogLevel     string `env:"CANCOMP_LOG_LEVEL"`
	LogFormat    string `env:"CANCOMP_LOG_FORMAT"`
}

// ParseEnv loads tagged fields of target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var overlay envOverlay
	if err := ParseEnv(&overlay); err != nil {
		return err
	}
	setIfPresent(&c.Lidarr.URL, overlay.LidarrURL)
	setIfPresent(&c.Lidarr.APIKey, overlay.LidarrAPIKey)
	setIfPresent(&c.MusicBrainz.Contact, overlay.Contact)
	setIfPresent(&c.Paths.Cache, overlay.CachePath)
	setIfPresent(&c.Logging.Level, overlay.LogLevel)
	setIfPresent(&c.Logging.Format, overlay.LogFormat)
	return nil
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
