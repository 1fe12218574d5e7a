package conf

// Bounds and defaults for the refresh interval, in seconds
const (
	DefaultRefreshInterval uint32 = 1
	MinRefreshInterval     uint32 = 1
	MaxRefreshInterval     uint32 = 3600
)

// DefaultPath is the settings file, relative to the working directory
const DefaultPath = "lightmon_config.toml"

type Config struct {
	RefreshIntervalSeconds uint32 `toml:"refresh_interval_seconds"`
	DarkMode               bool   `toml:"dark_mode"`
}

// Default returns the settings used when nothing usable is on disk
func Default() Config {
	return Config{
		RefreshIntervalSeconds: DefaultRefreshInterval,
		DarkMode:               false,
	}
}

// ClampInterval bounds seconds to [MinRefreshInterval, MaxRefreshInterval]
func ClampInterval(seconds uint64) uint32 {
	if seconds < uint64(MinRefreshInterval) {
		return MinRefreshInterval
	}
	if seconds > uint64(MaxRefreshInterval) {
		return MaxRefreshInterval
	}
	return uint32(seconds)
}
