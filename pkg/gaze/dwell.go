package gaze

import "time"

// Classification describes an iteration in which no change was observed.
type Classification int

const (
	// NoSignal means no change has been observed yet this session.
	NoSignal Classification = iota
	// Unchanged means the gaze has not moved, but not for long enough to be still.
	Unchanged
	// Still means the gaze has not moved for at least the dwell threshold.
	Still
)

func (c Classification) String() string {
	switch c {
	case NoSignal:
		return "no_signal"
	case Unchanged:
		return "unchanged"
	case Still:
		return "still"
	default:
		return "unknown"
	}
}

// DwellDetector tracks the idle interval since the last accepted change.
//
// lastChange is the instant the last committed point was first seen;
// currentChange is the instant of the pending, not yet committed, change.
// currentChange is never earlier than lastChange.
type DwellDetector struct {
	maxStill time.Duration

	lastChange    time.Time
	currentChange time.Time
	everChanged   bool
}

// NewDwellDetector creates a detector. A maxStill <= 0 disables the still
// classification entirely.
func NewDwellDetector(maxStill time.Duration) *DwellDetector {
	return &DwellDetector{maxStill: maxStill}
}

// Reset clears all timing state for a new session starting at now.
func (d *DwellDetector) Reset(now time.Time) {
	d.lastChange = now
	d.currentChange = now
	d.everChanged = false
}

// Enabled reports whether still classification is active.
func (d *DwellDetector) Enabled() bool {
	return d.maxStill > 0
}

// Observe records the arrival instant of a changed sample.
func (d *DwellDetector) Observe(at time.Time) {
	if at.Before(d.lastChange) {
		at = d.lastChange
	}
	d.currentChange = at
}

// Commit accepts the pending change once it has been dispatched.
func (d *DwellDetector) Commit() {
	d.lastChange = d.currentChange
	d.everChanged = true
}

// EverChanged reports whether any change was committed this session.
func (d *DwellDetector) EverChanged() bool {
	return d.everChanged
}

// Idle returns how long the gaze has been unchanged at now.
func (d *DwellDetector) Idle(now time.Time) time.Duration {
	return now.Sub(d.lastChange)
}

// Classify classifies an iteration without a change.
func (d *DwellDetector) Classify(now time.Time) Classification {
	if !d.everChanged {
		return NoSignal
	}
	if d.maxStill > 0 && d.Idle(now) >= d.maxStill {
		return Still
	}
	return Unchanged
}
