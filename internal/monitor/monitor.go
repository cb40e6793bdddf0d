// Package monitor polls an identity's listings in the background and raises
// notifications when new files appear.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sealdrop/internal/client/models"
	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

type EventType string

const (
	// EventNewReceived fires once per newly observed received record.
	EventNewReceived EventType = "new_received"
	// EventNewSent fires when the sent count grows between two snapshots.
	EventNewSent EventType = "new_sent"
)

// Event is one monitor notification. Record is set for EventNewReceived;
// SentCount carries the fresh sent total for EventNewSent.
type Event struct {
	Type      EventType
	Identity  string
	Record    models.FileRecord
	SentCount int
}

// Handler receives monitor events. Handlers run on the monitor goroutine and
// should return quickly.
type Handler func(Event)

// Lister supplies listing snapshots. The production implementation excludes
// private-vault records before the monitor ever sees them.
type Lister interface {
	Snapshot(ctx context.Context, identity string) (*models.ListingSnapshot, error)
}

// Monitor keeps a baseline snapshot for the monitored identity and diffs a
// fresh snapshot against it on every tick. The baseline is replaced wholesale
// each tick whether or not anything changed.
type Monitor struct {
	lister   Lister
	log      logging.Logger
	interval time.Duration

	mu       sync.Mutex
	identity string
	baseline *models.ListingSnapshot
	cancel   context.CancelFunc
	gen      int
	handlers []Handler
}

func New(lister Lister, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{lister: lister, interval: interval, log: log}
}

// Subscribe registers a handler for all subsequent events.
func (m *Monitor) Subscribe(h Handler) {
	m.mu.Lock()
	m.handlers = append(m.handlers, h)
	m.mu.Unlock()
}

// Start begins monitoring an identity. Starting the identity that is already
// being monitored is a no-op; starting a different one stops the previous
// loop first. The initial snapshot is fetched synchronously and becomes the
// diff baseline, so pre-existing files never fire notifications.
func (m *Monitor) Start(ctx context.Context, identity string) error {
	id, err := common.NormalizeIdentity(identity)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.cancel != nil && m.identity == id {
		m.mu.Unlock()
		return nil
	}
	m.stopLocked()
	m.mu.Unlock()

	baseline, err := m.lister.Snapshot(ctx, id)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.identity = id
	m.baseline = baseline
	m.cancel = cancel
	m.mu.Unlock()

	go m.loop(loopCtx, id, gen)
	m.log.Info(ctx, "monitoring started", "identity", id)
	return nil
}

// Stop cancels the timer and clears the baseline. Safe to call repeatedly.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()
}

func (m *Monitor) stopLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
	m.identity = ""
	m.baseline = nil
}

func (m *Monitor) loop(ctx context.Context, identity string, gen int) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick(ctx, identity, gen)
		case <-ctx.Done():
			return
		}
	}
}

// tick fetches a fresh snapshot and fires events for the differences.
// Errors are logged and swallowed: a transient network failure must not
// stop the background loop. The generation check discards ticks from a
// superseded loop racing a restart.
func (m *Monitor) tick(ctx context.Context, identity string, gen int) {
	fresh, err := m.lister.Snapshot(ctx, identity)
	if err != nil {
		m.log.Warn(ctx, "monitor tick failed", "identity", identity, "error", err)
		return
	}

	m.mu.Lock()
	if m.gen != gen || m.baseline == nil {
		m.mu.Unlock()
		return
	}
	baseline := m.baseline
	m.baseline = fresh
	handlers := make([]Handler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, record := range baseline.DiffReceived(fresh) {
		emit(handlers, Event{Type: EventNewReceived, Identity: identity, Record: record})
	}
	if len(fresh.Sent) > len(baseline.Sent) {
		emit(handlers, Event{Type: EventNewSent, Identity: identity, SentCount: len(fresh.Sent)})
	}
}

func emit(handlers []Handler, e Event) {
	for _, h := range handlers {
		h(e)
	}
}
