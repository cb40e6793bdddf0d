package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"cmd",
		"-g", "https://a.example,https://b.example",
		"-d", "/tmp/incoming",
		"-i", "7",
		"-m", "15",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Gateways)
	assert.Equal(t, "/tmp/incoming", cfg.DownloadDir)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 15*time.Second, cfg.MonitorInterval)
}

func TestParseFlags_NoFlagsKeepsDefaults(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, []string{"http://127.0.0.1:8080"}, cfg.Gateways)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestSplitGateways(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitGateways("a, b"))
	assert.Equal(t, []string{"a"}, splitGateways("a,,"))
	assert.Empty(t, splitGateways(""))
}
