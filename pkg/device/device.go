package device

import (
	"context"
	"errors"
	"time"
)

// Errors reported by sessions.
var (
	// ErrTimeout is returned by WaitForCallbacks when no sample arrived in time.
	// It is not a failure.
	ErrTimeout = errors.New("device: wait timed out")

	// ErrNoDevice is returned by Open when discovery found nothing to connect to.
	ErrNoDevice = errors.New("device: no device found")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("device: session closed")

	// ErrNotSubscribed is returned when samples are requested before Subscribe.
	ErrNotSubscribed = errors.New("device: not subscribed")
)

// Sample is one raw gaze reading.
type Sample struct {
	// X and Y are normalized display coordinates, conventionally in [0,1].
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Valid is false when the tracker could not locate the gaze. Invalid
	// samples carry no position and must be ignored.
	Valid bool `json:"valid"`

	// Timestamp is the device clock reading, if the backend provides one.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// SampleFunc receives samples during ProcessCallbacks.
type SampleFunc func(Sample)

// Session is a connection to exactly one eye tracker.
//
// Samples are queued by the backend and only handed to the subscriber from
// ProcessCallbacks, on the caller's goroutine.
type Session interface {
	// Subscribe starts sample delivery to fn.
	Subscribe(fn SampleFunc) error

	// WaitForCallbacks blocks until samples are pending, the timeout
	// elapses (ErrTimeout) or the device fails.
	WaitForCallbacks(timeout time.Duration) error

	// ProcessCallbacks delivers all pending samples to the subscriber.
	ProcessCallbacks() error

	// Unsubscribe stops sample delivery. It is safe to call multiple times.
	Unsubscribe() error

	// Close releases the connection. It is safe to call multiple times.
	Close() error

	// Name returns the backend name (e.g., "mock", "websocket").
	Name() string
}

// Opener discovers and connects to a device.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// SessionStats contains statistics about a session.
type SessionStats struct {
	// SamplesDelivered is the number of samples handed to the subscriber.
	SamplesDelivered int64 `json:"samples_delivered"`

	// SamplesDropped is the number of samples lost to a full queue.
	SamplesDropped int64 `json:"samples_dropped"`

	// Subscribed indicates if a subscriber is attached.
	Subscribed bool `json:"subscribed"`

	// Backend is the name of the backend.
	Backend string `json:"backend"`
}

// SessionWithStats extends Session with statistics.
type SessionWithStats interface {
	Session
	Stats() SessionStats
}
