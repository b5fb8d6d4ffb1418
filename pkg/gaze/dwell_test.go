package gaze

import (
	"testing"
	"time"
)

func TestDwellDetector_Threshold(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    Classification
	}{
		{"before threshold", 150 * time.Millisecond, Unchanged},
		{"at threshold", 200 * time.Millisecond, Still},
		{"past threshold", 250 * time.Millisecond, Still},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDwellDetector(200 * time.Millisecond)
			d.Reset(start)

			change := start.Add(30 * time.Millisecond)
			d.Observe(change)
			d.Commit()

			if got := d.Classify(change.Add(tt.elapsed)); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwellDetector_NoSignalBeforeFirstChange(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDwellDetector(200 * time.Millisecond)
	d.Reset(start)

	if got := d.Classify(start.Add(time.Hour)); got != NoSignal {
		t.Errorf("Classify() = %v, want %v", got, NoSignal)
	}
	if d.EverChanged() {
		t.Error("EverChanged() should be false before a commit")
	}

	// an observed but uncommitted change is still no signal
	d.Observe(start.Add(time.Second))
	if got := d.Classify(start.Add(time.Hour)); got != NoSignal {
		t.Errorf("Classify() after Observe = %v, want %v", got, NoSignal)
	}
}

func TestDwellDetector_Disabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, maxStill := range []time.Duration{0, -time.Second} {
		d := NewDwellDetector(maxStill)
		if d.Enabled() {
			t.Errorf("Enabled() = true for maxStill %v", maxStill)
		}
		d.Reset(start)
		d.Observe(start)
		d.Commit()

		if got := d.Classify(start.Add(24 * time.Hour)); got != Unchanged {
			t.Errorf("maxStill %v: Classify() = %v, want %v", maxStill, got, Unchanged)
		}
	}
}

func TestDwellDetector_ObserveNeverPrecedesLastChange(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDwellDetector(time.Second)
	d.Reset(start)

	d.Observe(start.Add(500 * time.Millisecond))
	d.Commit()

	// clock went backwards
	d.Observe(start)
	d.Commit()

	if idle := d.Idle(start.Add(500 * time.Millisecond)); idle != 0 {
		t.Errorf("Idle() = %v, want 0", idle)
	}
}

func TestDwellDetector_LatestObservationWins(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDwellDetector(200 * time.Millisecond)
	d.Reset(start)

	d.Observe(start.Add(10 * time.Millisecond))
	d.Observe(start.Add(100 * time.Millisecond))
	d.Commit()

	if got := d.Idle(start.Add(300 * time.Millisecond)); got != 200*time.Millisecond {
		t.Errorf("Idle() = %v, want 200ms", got)
	}
}

func TestDwellDetector_ResetClearsHistory(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDwellDetector(200 * time.Millisecond)
	d.Reset(start)
	d.Observe(start)
	d.Commit()

	d.Reset(start.Add(time.Minute))
	if d.EverChanged() {
		t.Error("EverChanged() should be false after Reset")
	}
	if got := d.Classify(start.Add(2 * time.Minute)); got != NoSignal {
		t.Errorf("Classify() = %v, want %v", got, NoSignal)
	}
}
