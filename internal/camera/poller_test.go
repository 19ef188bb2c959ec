package camera

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"filament-station/config"
	"filament-station/internal/scan"
)

type frame struct {
	payload string
	ok      bool
	err     error
}

// scriptedSource replays a fixed sequence of decode attempts, then reports
// empty frames forever.
type scriptedSource struct {
	mu     sync.Mutex
	frames []frame
	i      int
	closed bool
}

func (s *scriptedSource) Next() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.i >= len(s.frames) {
		return "", false, nil
	}
	f := s.frames[s.i]
	s.i++
	return f.payload, f.ok, f.err
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func pollerConfig() *config.Config {
	return &config.Config{
		Station: config.StationConfig{
			Locations: []config.Location{{QR: "fs://loc/dryer", Name: "Dryer"}},
		},
		Camera: config.CameraConfig{ScanInterval: time.Millisecond},
	}
}

func TestPollerDebouncesAndClassifies(t *testing.T) {
	src := &scriptedSource{frames: []frame{
		{payload: "fs://spool/abc-123", ok: true},
		{payload: "fs://spool/abc-123", ok: true}, // second consecutive read emits
		{payload: "fs://spool/abc-123", ok: true}, // inside cooldown, suppressed
		{payload: "fs://loc/dryer", ok: true},     // also inside cooldown
		{payload: "fs://loc/dryer", ok: true},
	}}

	events := make(chan scan.Event, 8)
	p := NewPoller(pollerConfig(), src, func(ev scan.Event) { events <- ev }, func(string) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case ev := <-events:
		assert.Equal(t, scan.KindSpool, ev.Kind)
		assert.Equal(t, "fs://spool/abc-123", ev.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the debounced scan event")
	}

	// The cooldown swallows everything after the emission.
	select {
	case ev := <-events:
		t.Fatalf("unexpected second event inside the cooldown: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	<-done
	src.mu.Lock()
	defer src.mu.Unlock()
	assert.True(t, src.closed, "cancelling the poller must release the camera")
}

func TestPollerSingleMisreadIsSuppressed(t *testing.T) {
	src := &scriptedSource{frames: []frame{
		{payload: "fs://spool/garbled", ok: true},
		{payload: "fs://spool/abc-123", ok: true},
	}}

	events := make(chan scan.Event, 8)
	p := NewPoller(pollerConfig(), src, func(ev scan.Event) { events <- ev }, func(string) {})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Empty(t, events, "no value was read twice in a row, nothing may be emitted")
}

func TestPollerStopsOnCameraError(t *testing.T) {
	src := &scriptedSource{frames: []frame{
		{err: assert.AnError},
	}}

	var reported string
	p := NewPoller(pollerConfig(), src, func(scan.Event) {}, func(msg string) { reported = msg })

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not terminate after a camera error")
	}
	assert.Contains(t, reported, "Camera unavailable")
	assert.True(t, src.closed)
}
