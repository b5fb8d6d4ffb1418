package gaze

import (
	"sync/atomic"
	"time"
)

// State is the lifecycle state of an Engine.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateSubscribed
	StateRunning
	StateCleaningUp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateSubscribed:
		return "subscribed"
	case StateRunning:
		return "running"
	case StateCleaningUp:
		return "cleaning_up"
	default:
		return "unknown"
	}
}

// Guard admits at most one session at a time among the engines sharing it.
type Guard struct {
	active atomic.Bool
}

// DefaultGuard is shared by every Engine created without WithGuard, which
// makes the single-session rule process-wide.
var DefaultGuard = NewGuard()

// NewGuard returns an independent guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Acquire marks a session in progress. It returns false if one already is.
func (g *Guard) Acquire() bool {
	return g.active.CompareAndSwap(false, true)
}

// Release marks the session finished.
func (g *Guard) Release() {
	g.active.Store(false)
}

// Active reports whether a session is in progress.
func (g *Guard) Active() bool {
	return g.active.Load()
}

// SessionState is the mutable state of one tracking run. It is only touched
// by the goroutine running the loop.
type SessionState struct {
	ID string

	LastPoint    Point
	CurrentPoint Point
	PointChanged bool
	Aborted      bool

	screen *Screen
	dwell  *DwellDetector
}

func newSessionState(id string, cfg Config, now time.Time) *SessionState {
	st := &SessionState{
		ID:     id,
		screen: cfg.Screen,
		dwell:  NewDwellDetector(cfg.MaxStill),
	}
	st.dwell.Reset(now)
	return st
}

// EverChanged reports whether a change has been committed this session.
func (s *SessionState) EverChanged() bool {
	return s.dwell.EverChanged()
}
