// Package gaze turns raw eye-tracker samples into application events.
//
// An Engine drains samples from a device.Session in a single-goroutine
// polling loop, debounces them (raw tolerance or screen pixels), tracks how
// long the gaze has been still and dispatches at most one handler per
// iteration. Handlers end the session by returning true.
package gaze

import (
	"fmt"
	"math"
)

// Tolerance is the absolute per-axis distance below which two raw points
// are considered the same.
const Tolerance = 1e-5

// Point is a normalized gaze position, conventionally in [0,1] on both axes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Screen holds the pixel dimensions of the surface points are mapped onto.
type Screen struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ScreenPoint is a Point quantized to pixels.
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Validate checks that both dimensions are positive.
func (s Screen) Validate() error {
	if s.Width <= 0 {
		return fmt.Errorf("screen width must be positive, got %d", s.Width)
	}
	if s.Height <= 0 {
		return fmt.Errorf("screen height must be positive, got %d", s.Height)
	}
	return nil
}

// ToScreen quantizes p to pixel coordinates, rounding half away from zero.
func (p Point) ToScreen(s Screen) ScreenPoint {
	return ScreenPoint{
		X: int(math.Round(p.X * float64(s.Width))),
		Y: int(math.Round(p.Y * float64(s.Height))),
	}
}

// Same reports whether p and other are within Tolerance on both axes.
func (p Point) Same(other Point) bool {
	return math.Abs(p.X-other.X) < Tolerance && math.Abs(p.Y-other.Y) < Tolerance
}

// SameOnScreen reports whether p and other land on the same pixel.
func (p Point) SameOnScreen(other Point, s Screen) bool {
	return p.ToScreen(s) == other.ToScreen(s)
}

// Changed reports whether current differs from last. With a nil screen the
// raw tolerance is used, otherwise both points are compared in pixels.
func Changed(current, last Point, screen *Screen) bool {
	if screen != nil {
		return !current.SameOnScreen(last, *screen)
	}
	return !current.Same(last)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.X, p.Y)
}
