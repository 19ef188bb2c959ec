package camera

import (
	"context"
	"log"
	"time"

	"filament-station/config"
	"filament-station/internal/scan"
)

// Poller is the background half of the scan pipeline: it polls the frame
// source on the configured interval, debounces the raw decode stream, and
// publishes classified events. It never touches pairing state itself.
type Poller struct {
	source    FrameSource
	debouncer *scan.Debouncer
	locations []config.Location
	interval  time.Duration
	emit      func(scan.Event)
	report    func(string)
}

// NewPoller wires a frame source to the station. emit receives classified
// events; report receives user-visible camera status lines.
func NewPoller(cfg *config.Config, source FrameSource, emit func(scan.Event), report func(string)) *Poller {
	return &Poller{
		source:    source,
		debouncer: scan.NewDebouncer(scan.DefaultCooldown),
		locations: cfg.Station.Locations,
		interval:  cfg.Camera.ScanInterval,
		emit:      emit,
		report:    report,
	}
}

// Run polls until ctx is cancelled or the camera fails. A camera failure is
// reported once and ends the poller; it does not retry.
func (p *Poller) Run(ctx context.Context) {
	defer p.source.Close()

	log.Printf("Camera poller started (interval %s)", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Camera poller shutting down")
			return
		case <-ticker.C:
			payload, ok, err := p.source.Next()
			if err != nil {
				log.Printf("Camera error: %v", err)
				p.report("Camera unavailable. Manual actions still work.")
				return
			}

			now := time.Now().UTC()
			if value, emit := p.debouncer.Observe(payload, ok, now); emit {
				p.emit(scan.Classify(value, p.locations, now))
			}
		}
	}
}
