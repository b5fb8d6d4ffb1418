package gaze

import "time"

// EventType names the application-facing events.
type EventType string

const (
	EventGaze  EventType = "gaze"  // gaze moved
	EventIdle  EventType = "idle"  // nothing new, or no signal yet
	EventStill EventType = "still" // gaze held still past the dwell threshold
	EventExit  EventType = "exit"  // session ended
)

// Event is one dispatched handler call in event form.
type Event struct {
	Type  EventType    `json:"type"`
	Point Point        `json:"point"`
	Pixel *ScreenPoint `json:"pixel,omitempty"`
	At    time.Time    `json:"at"`
}

// EventCallbacks builds Callbacks that forward every slot to sink as an
// Event. After each gaze, idle or still event stop is consulted; returning
// true ends the session. A nil stop never ends it. When screen is non-nil
// events carry the quantized pixel.
func EventCallbacks(sink func(Event), screen *Screen, stop func() bool) Callbacks {
	emit := func(t EventType) Handler {
		return func(p Point) bool {
			ev := Event{Type: t, Point: p, At: time.Now()}
			if screen != nil {
				px := p.ToScreen(*screen)
				ev.Pixel = &px
			}
			sink(ev)
			if t == EventExit || stop == nil {
				return false
			}
			return stop()
		}
	}

	return Callbacks{
		OnGaze:  emit(EventGaze),
		OnError: emit(EventIdle),
		OnStill: emit(EventStill),
		OnExit:  emit(EventExit),
	}
}
