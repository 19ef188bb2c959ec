package station

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"filament-station/config"
	"filament-station/internal/model"
	"filament-station/internal/parse"
	"filament-station/internal/scan"
	"filament-station/internal/store"
)

const (
	defaultTick       = 200 * time.Millisecond
	commandBufferSize = 64
)

// Command is a unit of work processed by the station loop. Camera scans and
// manual actions from the presentation layer all travel through the same
// queue, so every state transition is strictly serialized.
type Command interface {
	isCommand()
}

type scanCommand struct{ event scan.Event }
type weighCommand struct{ grams float64 }
type moveCommand struct{ location string }
type urlCommand struct{ raw string }
type statusCommand struct{ text string }

func (scanCommand) isCommand()   {}
func (weighCommand) isCommand()  {}
func (moveCommand) isCommand()   {}
func (urlCommand) isCommand()    {}
func (statusCommand) isCommand() {}

// Snapshot is what the presentation layer renders: the latest status line and
// the current spool record, if any.
type Snapshot struct {
	Status string       `json:"status"`
	Spool  *model.Spool `json:"spool"`
}

// Notifier is told about spools that were just moved. Implemented by the
// notification worker pool; nil disables notifications.
type Notifier interface {
	Dispatch(spoolID int64)
}

type locationScan struct {
	name string
	at   time.Time
}

// Station is the scan-pairing state machine. A spool scan and a location scan
// observed within the pairing window, in either order, are combined into one
// move. All pairing state is owned by the Run goroutine.
type Station struct {
	cfg      *config.Config
	store    store.Store
	notifier Notifier
	commands chan Command
	tick     time.Duration

	// Pairing state. Touched only from the Run goroutine.
	current      *model.Spool
	lastSpoolAt  time.Time
	hasSpoolScan bool
	lastLocation *locationScan

	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a station. notifier may be nil.
func New(cfg *config.Config, s store.Store, notifier Notifier) *Station {
	return &Station{
		cfg:      cfg,
		store:    s,
		notifier: notifier,
		commands: make(chan Command, commandBufferSize),
		tick:     defaultTick,
		snapshot: Snapshot{Status: "Ready. Scan a spool."},
	}
}

// Snapshot returns the latest status line and current spool for rendering.
func (st *Station) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot
}

// EnqueueScan hands a classified camera scan to the station loop.
func (st *Station) EnqueueScan(ev scan.Event) {
	st.commands <- scanCommand{event: ev}
}

// EnqueueWeigh records a manual weigh of the current spool.
func (st *Station) EnqueueWeigh(grams float64) {
	st.commands <- weighCommand{grams: grams}
}

// EnqueueMove records a manual move of the current spool.
func (st *Station) EnqueueMove(location string) {
	st.commands <- moveCommand{location: location}
}

// EnqueueManualURL handles a hand-typed spool URL like a spool scan.
func (st *Station) EnqueueManualURL(raw string) {
	st.commands <- urlCommand{raw: raw}
}

// ReportStatus publishes a status line from a collaborator, e.g. a camera
// failure, without touching pairing state.
func (st *Station) ReportStatus(text string) {
	st.commands <- statusCommand{text: text}
}

// Run drains the command queue on a short ticker until ctx is cancelled.
// It is the only goroutine that mutates pairing state or calls the store.
func (st *Station) Run(ctx context.Context) {
	log.Println("Station loop started")
	ticker := time.NewTicker(st.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Station loop shutting down")
			return
		case <-ticker.C:
			st.drain(ctx)
		}
	}
}

func (st *Station) drain(ctx context.Context) {
	for {
		select {
		case cmd := <-st.commands:
			st.process(ctx, cmd)
		default:
			return
		}
	}
}

func (st *Station) process(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case scanCommand:
		st.onScanEvent(ctx, c.event)
	case weighCommand:
		st.onWeigh(ctx, c.grams, time.Now().UTC())
	case moveCommand:
		st.onManualMove(ctx, c.location, time.Now().UTC())
	case urlCommand:
		st.handleSpoolScan(ctx, strings.TrimSpace(c.raw), time.Now().UTC())
	case statusCommand:
		st.setStatus(c.text)
	}
}

// onScanEvent routes a classified scan. Classification strictly determines
// which freshness field is written and which is checked for pairing.
func (st *Station) onScanEvent(ctx context.Context, ev scan.Event) {
	switch ev.Kind {
	case scan.KindSpool:
		st.handleSpoolScan(ctx, ev.Value, ev.ObservedAt)
	case scan.KindLocation:
		st.handleLocationScan(ctx, ev.Value, ev.ObservedAt)
	}
}

func (st *Station) handleSpoolScan(ctx context.Context, url string, now time.Time) {
	if url == "" {
		return
	}

	spool, err := st.store.FindSpoolByURL(ctx, url)
	if err != nil {
		st.fail("look up spool", err)
		return
	}
	if spool == nil {
		spool, err = st.store.CreateSpool(ctx, url, parse.DeriveName(url))
		if err != nil {
			st.fail("create spool", err)
			return
		}
		log.Printf("Created spool %d (%s) for %s", spool.ID, spool.Name, url)
	}

	st.current = spool
	st.lastSpoolAt = now
	st.hasSpoolScan = true

	note := fmt.Sprintf("Scanned spool: %s", url)
	err = st.store.AppendLog(ctx, store.LogParams{
		SpoolID: spool.ID,
		Action:  model.ActionScan,
		At:      now,
		Note:    &note,
	})
	if err != nil {
		st.fail("log scan", err)
		return
	}

	st.setStatus("Spool scanned. (Scan a location to move it.)")

	if st.lastLocation != nil && now.Sub(st.lastLocation.at) <= st.cfg.Station.PairWindow {
		st.move(ctx, st.lastLocation.name, now)
	}
}

func (st *Station) handleLocationScan(ctx context.Context, name string, now time.Time) {
	st.lastLocation = &locationScan{name: name, at: now}
	st.setStatus(fmt.Sprintf("Location scanned: %s. (Scan spool to move.)", name))

	if st.current != nil && st.hasSpoolScan && now.Sub(st.lastSpoolAt) <= st.cfg.Station.PairWindow {
		st.move(ctx, name, now)
	}
}

// move updates the current spool's location. With no current spool this is a
// silent no-op; the pairing checks already guard it, but manual entry points
// reach here too. A single location scan triggers at most one move: the
// location freshness is consumed, the spool freshness is not.
func (st *Station) move(ctx context.Context, location string, now time.Time) {
	if st.current == nil {
		return
	}

	if err := st.store.UpdateLocation(ctx, st.current.ID, location, now); err != nil {
		st.fail("move spool", err)
		return
	}

	// Read back so the snapshot reflects the canonical persisted record.
	if spool, err := st.store.FindSpoolByURL(ctx, st.current.URL); err != nil {
		st.fail("refresh spool", err)
		return
	} else if spool != nil {
		st.current = spool
	}

	st.lastLocation = nil
	st.setStatus(fmt.Sprintf("Moved to: %s", location))

	if st.notifier != nil {
		st.notifier.Dispatch(st.current.ID)
	}
}

func (st *Station) onManualMove(ctx context.Context, location string, now time.Time) {
	if st.current == nil {
		st.setStatus("No spool scanned yet. Scan a spool first.")
		return
	}
	st.move(ctx, location, now)
}

func (st *Station) onWeigh(ctx context.Context, grams float64, now time.Time) {
	if st.current == nil {
		st.setStatus("No spool scanned yet. Scan a spool first.")
		return
	}

	if err := st.store.UpdateWeight(ctx, st.current.ID, grams, now); err != nil {
		st.fail("update weight", err)
		return
	}

	if spool, err := st.store.FindSpoolByURL(ctx, st.current.URL); err != nil {
		st.fail("refresh spool", err)
		return
	} else if spool != nil {
		st.current = spool
	}

	st.setStatus("Weight updated.")
}

// OpenCurrent opens the current spool's page in the configured browser.
// Unlike the queued actions it runs synchronously: it reads the snapshot and
// never mutates pairing state.
func (st *Station) OpenCurrent() error {
	snap := st.Snapshot()
	if snap.Spool == nil {
		return fmt.Errorf("no spool scanned")
	}

	browser := st.cfg.Station.Browser
	if browser == "" {
		browser = "xdg-open"
	}
	if err := exec.Command(browser, snap.Spool.URL).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", snap.Spool.URL, err)
	}
	return nil
}

func (st *Station) fail(op string, err error) {
	log.Printf("Error: failed to %s: %v", op, err)
	st.setStatus(fmt.Sprintf("Error: failed to %s.", op))
}

func (st *Station) setStatus(text string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = Snapshot{Status: text, Spool: st.cloneCurrent()}
}

// cloneCurrent copies the current record so API readers never alias the
// station's mutable state. Caller holds mu.
func (st *Station) cloneCurrent() *model.Spool {
	if st.current == nil {
		return nil
	}
	c := *st.current
	return &c
}
