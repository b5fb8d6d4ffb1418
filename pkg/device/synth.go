package device

import (
	"math"
	"time"
)

// Synth generates a deterministic gaze path: short saccades between
// fixation targets on a circle, each fixation held long enough for dwell
// detection, with sub-tolerance jitter and periodic blinks.
type Synth struct {
	interval time.Duration
	targets  int
	radius   float64

	holdSamples    int
	saccadeSamples int
	blinkEvery     int

	n int
}

// SynthOption configures a Synth.
type SynthOption func(*Synth)

// WithHold sets how long each fixation lasts.
func WithHold(d time.Duration) SynthOption {
	return func(s *Synth) {
		if n := int(d / s.interval); n > 0 {
			s.holdSamples = n
		}
	}
}

// WithBlinkEvery makes every n-th sample invalid. Zero disables blinks.
func WithBlinkEvery(n int) SynthOption {
	return func(s *Synth) {
		s.blinkEvery = n
	}
}

// NewSynth creates a generator producing one sample per interval.
func NewSynth(interval time.Duration, opts ...SynthOption) *Synth {
	if interval <= 0 {
		interval = time.Second / 60
	}
	s := &Synth{
		interval:       interval,
		targets:        8,
		radius:         0.3,
		saccadeSamples: 3,
		blinkEvery:     97,
	}
	s.holdSamples = int(800 * time.Millisecond / interval)
	if s.holdSamples < 1 {
		s.holdSamples = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the time between samples.
func (s *Synth) Interval() time.Duration {
	return s.interval
}

// Next returns the next sample.
func (s *Synth) Next() Sample {
	n := s.n
	s.n++

	if s.blinkEvery > 0 && n > 0 && n%s.blinkEvery == 0 {
		return Sample{Valid: false, Timestamp: time.Now()}
	}

	period := s.saccadeSamples + s.holdSamples
	fixation := n / period
	phase := n % period

	fromX, fromY := s.target(fixation - 1)
	toX, toY := s.target(fixation)

	x, y := toX, toY
	if phase < s.saccadeSamples {
		t := float64(phase+1) / float64(s.saccadeSamples+1)
		x = fromX + (toX-fromX)*t
		y = fromY + (toY-fromY)*t
	} else {
		// jitter stays well below the raw change tolerance
		j := 2e-6 * math.Sin(float64(n))
		x += j
		y -= j
	}

	return Sample{X: x, Y: y, Valid: true, Timestamp: time.Now()}
}

func (s *Synth) target(i int) (float64, float64) {
	if i < 0 {
		return 0.5, 0.5
	}
	// step by 3 so consecutive targets are far apart
	angle := 2 * math.Pi * float64((i*3)%s.targets) / float64(s.targets)
	return 0.5 + s.radius*math.Cos(angle), 0.5 + s.radius*math.Sin(angle)
}
