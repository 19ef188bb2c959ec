package scan

import (
	"time"

	"filament-station/config"
)

// EventKind discriminates what a decoded QR payload identified.
type EventKind string

const (
	KindSpool    EventKind = "spool"
	KindLocation EventKind = "location"
)

// Event is one classified QR observation. For spool events Value is the raw
// payload (the spool's identity); for location events it is the configured
// location name.
type Event struct {
	Kind       EventKind
	Value      string
	ObservedAt time.Time
}

// Classify maps a decoded payload to a spool or location event. Locations are
// matched by exact string equality against the configured QR payloads, in
// configured order, first match wins. Anything else is a spool identifier.
func Classify(payload string, locations []config.Location, now time.Time) Event {
	for _, loc := range locations {
		if payload == loc.QR {
			return Event{Kind: KindLocation, Value: loc.Name, ObservedAt: now}
		}
	}
	return Event{Kind: KindSpool, Value: payload, ObservedAt: now}
}
