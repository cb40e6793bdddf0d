package cli

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/sealdrop/internal/client/config"
	"github.com/dmitrijs2005/sealdrop/internal/client/services"
	"github.com/dmitrijs2005/sealdrop/internal/filex"
	"github.com/dmitrijs2005/sealdrop/internal/index"
	"github.com/dmitrijs2005/sealdrop/internal/ledger"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
	"github.com/dmitrijs2005/sealdrop/internal/monitor"
	"github.com/dmitrijs2005/sealdrop/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App holds the wired client stack. The ledger client and services are built
// on unlock, once the signing key (and with it the identity) is known.
type App struct {
	config      *config.Config
	log         logging.Logger
	reader      *bufio.Reader
	downloadDir string

	identity string
	transfer *services.TransferService
	listing  *services.ListingService
	watcher  *monitor.Monitor

	Mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	dir, err := filex.EnsureSubDir(c.DownloadDir)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      c,
		log:         logging.NewDefault(),
		reader:      bufio.NewReader(os.Stdin),
		downloadDir: dir,
	}, nil
}

func (a *App) isUnlocked() bool {
	return a.identity != ""
}

// Unlock reads the signing key, derives the identity from it and builds the
// gateway client and services around the signer. The key itself never leaves
// this method; only the signer holds it.
func (a *App) Unlock(ctx context.Context) error {
	seed, err := GetSigningKey(os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	signer, err := ledger.NewKeySignerFromSeed(string(seed))
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	var delegate *ledger.DelegateUploader
	if a.config.DelegateURL != "" {
		delegate = ledger.NewDelegateUploader(
			a.config.DelegateURL, signer.Identity(), []byte(a.config.DelegateSecret), &http.Client{Timeout: 30 * time.Second})
	}

	client, err := ledger.NewHTTPClient(ledger.HTTPClientOptions{
		Gateways: a.config.Gateways,
		Signer:   signer,
		Delegate: delegate,
		Policy: ledger.FallbackPolicy{
			Rounds:  a.config.FallbackRounds,
			Backoff: a.config.FallbackBackoff,
		},
		ConfirmTimeout:  a.config.ConfirmTimeout,
		ConfirmInterval: a.config.ConfirmInterval,
	}, a.log)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.listing = services.NewListingService(index.New(client, a.log), nil, services.ListingOptions{
		ListingTTL: a.config.ListingTTL,
		AliasTTL:   a.config.AliasTTL,
		MaxEntries: a.config.CacheMaxEntries,
	}, a.log)
	a.transfer = services.NewTransferService(client, a.listing, a.log)

	a.watcher = monitor.New(a.listing, a.config.MonitorInterval, a.log)
	a.watcher.Subscribe(a.printEvent)

	a.identity = signer.Identity()
	printlnFn("Unlocked as", a.identity)
	return nil
}

// Lock drops the signer-derived state. A fresh unlock rebuilds everything.
func (a *App) Lock(ctx context.Context) error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.identity = ""
	a.transfer = nil
	a.listing = nil
	a.watcher = nil
	printlnFn("Locked")
	return nil
}

func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to sealdrop CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.Unlock(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, scanner)

	if a.watcher != nil {
		a.watcher.Stop()
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.identity != "" {
		id := a.identity
		if len(id) > 8 {
			id = id[:8]
		}
		s = id + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher periodically probes the configured gateways and
// flips the mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := netx.CheckAny(checkCtx, a.config.Gateways)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) printEvent(e monitor.Event) {
	switch e.Type {
	case monitor.EventNewReceived:
		printlnFn("New file received:", e.Record.ContentID, e.Record.Name, "from", e.Record.Sender)
	case monitor.EventNewSent:
		printlnFn("Sent listing grew, now", e.SentCount, "records")
	}
}
