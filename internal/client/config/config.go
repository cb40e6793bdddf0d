package config

import "time"

// Config holds runtime settings for the sealdrop CLI.
//
// Gateways are tried in order for reads; the first one is used for writes
// with the rest as fallbacks. DelegateURL/DelegateSecret configure the
// optional upload relay used when the local signing key cannot post
// transactions directly.
type Config struct {
	Gateways            []string
	DelegateURL         string
	DelegateSecret      string
	DownloadDir         string
	OnlineCheckInterval time.Duration
	MonitorInterval     time.Duration
	ConfirmTimeout      time.Duration
	ConfirmInterval     time.Duration
	ListingTTL          time.Duration
	AliasTTL            time.Duration
	CacheMaxEntries     int
	FallbackRounds      uint64
	FallbackBackoff     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Gateways = []string{"http://127.0.0.1:8080"}
	c.DownloadDir = "downloads"
	c.OnlineCheckInterval = 3 * time.Second
	c.MonitorInterval = 30 * time.Second
	c.ConfirmTimeout = 2 * time.Minute
	c.ConfirmInterval = 5 * time.Second
	c.ListingTTL = time.Minute
	c.AliasTTL = 5 * time.Minute
	c.CacheMaxEntries = 1024
	c.FallbackRounds = 2
	c.FallbackBackoff = time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
