package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealdrop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-g string   comma-separated list of gateway base URLs
//	-d string   directory fetched files are written to
//	-i int      online check interval in seconds
//	-m int      ledger monitor poll interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-g", "-d", "-i", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	gateways := fs.String("g", strings.Join(cfg.Gateways, ","), "comma-separated gateway base URLs")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	monitorInterval := fs.Int("m", int(cfg.MonitorInterval.Seconds()), "monitor poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Gateways = splitGateways(*gateways)
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.MonitorInterval = time.Duration(*monitorInterval) * time.Second
}

func splitGateways(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
