package config

const (
	defaultConfigPath          = "~/.config/cancomp/config.toml"
	defaultAppName             = "CanComp"
	defaultAppVersion          = "0.0.0"
	defaultContact             = "unknown"
	defaultMusicBrainzBaseURL  = "https://musicbrainz.org/ws/2"
	defaultCacheMaxAgeDays     = 365.0
	defaultMBRequestTimeout    = 60
	defaultMBMinIntervalMS     = 1000
	defaultMBMaxRetries        = 5
	defaultLidarrURL           = "http://localhost:8686"
	defaultLidarrTimeout       = 60
	defaultCachePath           = "~/.cache/cancomp/mb_cache.sqlite"
	defaultOverridesPath       = "~/.config/cancomp/overrides.toml"
	defaultOutputDir           = "."
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	maxMusicBrainzRetries      = 10
	minMusicBrainzIntervalMS   = 1000
	defaultMusicBrainzContactH = "set musicbrainz.contact to an email or URL so MusicBrainz can reach you"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		MusicBrainz: MusicBrainz{
			AppName:         defaultAppName,
			Version:         defaultAppVersion,
			Contact:         defaultContact,
			BaseURL:         defaultMusicBrainzBaseURL,
			CacheMaxAgeDays: defaultCacheMaxAgeDays,
			RequestTimeout:  defaultMBRequestTimeout,
			MinIntervalMS:   defaultMBMinIntervalMS,
			MaxRetries:      defaultMBMaxRetries,
		},
		Lidarr: Lidarr{
			URL:            defaultLidarrURL,
			RequestTimeout: defaultLidarrTimeout,
		},
		Paths: Paths{
			Cache:     defaultCachePath,
			Overrides: defaultOverridesPath,
			OutputDir: defaultOutputDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
