package scan

import "time"

// DefaultCooldown is how long the debouncer stays silent after an emission.
const DefaultCooldown = time.Second

// Debouncer filters the raw decode stream coming off the camera. A value is
// emitted only after it has been read on two consecutive decode attempts,
// which rejects single-frame misreads without needing decoder confidence
// scores. After an emission nothing is emitted for the cooldown period,
// regardless of what the camera sees.
type Debouncer struct {
	cooldown      time.Duration
	lastValue     string
	repeats       int
	cooldownUntil time.Time
}

// NewDebouncer creates a debouncer with the given cooldown. A non-positive
// cooldown falls back to DefaultCooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Debouncer{cooldown: cooldown}
}

// Observe feeds one decode attempt into the debouncer. ok is false when the
// frame contained no code; such frames leave the repeat counter untouched.
// The returned bool reports whether value should be emitted downstream.
func (d *Debouncer) Observe(value string, ok bool, now time.Time) (string, bool) {
	if !ok {
		return "", false
	}

	if value == d.lastValue {
		d.repeats++
	} else {
		d.lastValue = value
		d.repeats = 1
	}

	if now.Before(d.cooldownUntil) {
		return "", false
	}
	if d.repeats < 2 {
		return "", false
	}

	d.cooldownUntil = now.Add(d.cooldown)
	return value, true
}
