package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sealdrop/internal/flagx"
	"github.com/dmitrijs2005/sealdrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "30s" or
// as integer nanoseconds. After parsing, values are copied into the runtime
// Config (which uses time.Duration).
type JsonConfig struct {
	Gateways            []string       `json:"gateways"`
	DelegateURL         string         `json:"delegate_url"`
	DelegateSecret      string         `json:"delegate_secret"`
	DownloadDir         string         `json:"download_dir"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	MonitorInterval     timex.Duration `json:"monitor_interval"`
	ConfirmTimeout      timex.Duration `json:"confirm_timeout"`
	ConfirmInterval     timex.Duration `json:"confirm_interval"`
	ListingTTL          timex.Duration `json:"listing_ttl"`
	AliasTTL            timex.Duration `json:"alias_ttl"`
	CacheMaxEntries     int            `json:"cache_max_entries"`
	FallbackRounds      uint64         `json:"fallback_rounds"`
	FallbackBackoff     timex.Duration `json:"fallback_backoff"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags via
// flagx.JsonConfigFlags(); with neither flag set no JSON is loaded. Only
// fields present in the file override the current values, so a partial
// config keeps the defaults for everything it omits. Read or unmarshal
// errors panic (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if len(jc.Gateways) > 0 {
		cfg.Gateways = jc.Gateways
	}
	if jc.DelegateURL != "" {
		cfg.DelegateURL = jc.DelegateURL
	}
	if jc.DelegateSecret != "" {
		cfg.DelegateSecret = jc.DelegateSecret
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.MonitorInterval.Duration != 0 {
		cfg.MonitorInterval = jc.MonitorInterval.Duration
	}
	if jc.ConfirmTimeout.Duration != 0 {
		cfg.ConfirmTimeout = jc.ConfirmTimeout.Duration
	}
	if jc.ConfirmInterval.Duration != 0 {
		cfg.ConfirmInterval = jc.ConfirmInterval.Duration
	}
	if jc.ListingTTL.Duration != 0 {
		cfg.ListingTTL = jc.ListingTTL.Duration
	}
	if jc.AliasTTL.Duration != 0 {
		cfg.AliasTTL = jc.AliasTTL.Duration
	}
	if jc.CacheMaxEntries != 0 {
		cfg.CacheMaxEntries = jc.CacheMaxEntries
	}
	if jc.FallbackRounds != 0 {
		cfg.FallbackRounds = jc.FallbackRounds
	}
	if jc.FallbackBackoff.Duration != 0 {
		cfg.FallbackBackoff = jc.FallbackBackoff.Duration
	}
}
