package config

const (
	defaultDataDir              = "~/.local/share/crosswalk"
	defaultLogDir               = "~/.local/share/crosswalk/logs"
	defaultAPIBind              = "127.0.0.1:7583"
	defaultTTLDays              = 90
	defaultMaxRows              = 100_000
	defaultMaintenanceInterval  = 360
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBLanguage         = "en-US"
	defaultTVDBBaseURL          = "https://api4.thetvdb.com/v4"
	defaultTVmazeBaseURL        = "https://api.tvmaze.com"
	defaultBridgeTimeoutSeconds = 30
	defaultUserAgent            = "crosswalk/dev"
	defaultMetricsBufferSize    = 256
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Cache: Cache{
			TTLDays:             defaultTTLDays,
			MaxRows:             defaultMaxRows,
			MaintenanceInterval: defaultMaintenanceInterval,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		TVDB: TVDB{
			BaseURL: defaultTVDBBaseURL,
		},
		TVmaze: TVmaze{
			BaseURL: defaultTVmazeBaseURL,
		},
		Resolver: Resolver{
			BridgeTimeoutSeconds: defaultBridgeTimeoutSeconds,
			UserAgent:            defaultUserAgent,
		},
		Metrics: Metrics{
			BufferSize: defaultMetricsBufferSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
