package gaze

import "testing"

func TestEventCallbacks_Mapping(t *testing.T) {
	var events []Event
	cb := EventCallbacks(func(ev Event) { events = append(events, ev) }, nil, nil)

	p := Point{X: 0.25, Y: 0.5}
	cb.OnGaze(p)
	cb.OnError(p)
	cb.OnStill(p)
	cb.OnExit(p)

	want := []EventType{EventGaze, EventIdle, EventStill, EventExit}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Type != want[i] {
			t.Errorf("event %d type = %s, want %s", i, ev.Type, want[i])
		}
		if ev.Point != p {
			t.Errorf("event %d point = %v, want %v", i, ev.Point, p)
		}
		if ev.Pixel != nil {
			t.Errorf("event %d should have no pixel without a screen", i)
		}
	}
}

func TestEventCallbacks_Pixel(t *testing.T) {
	var got Event
	screen := &Screen{Width: 1920, Height: 1080}
	cb := EventCallbacks(func(ev Event) { got = ev }, screen, nil)

	cb.OnGaze(Point{X: 0.5, Y: 0.5})
	if got.Pixel == nil {
		t.Fatal("pixel should be set with a screen")
	}
	if *got.Pixel != (ScreenPoint{X: 960, Y: 540}) {
		t.Errorf("pixel = %+v, want {960 540}", *got.Pixel)
	}
}

func TestEventCallbacks_Stop(t *testing.T) {
	stop := false
	cb := EventCallbacks(func(Event) {}, nil, func() bool { return stop })

	if cb.OnGaze(Point{}) {
		t.Error("OnGaze should not abort before stop")
	}
	stop = true
	if !cb.OnGaze(Point{}) || !cb.OnError(Point{}) || !cb.OnStill(Point{}) {
		t.Error("handlers should abort once stop is true")
	}
	if cb.OnExit(Point{}) {
		t.Error("OnExit never aborts")
	}
}
