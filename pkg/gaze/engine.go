package gaze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/device"
)

// DefaultWaitTimeout bounds each blocking wait on the device.
const DefaultWaitTimeout = 100 * time.Millisecond

// Config configures one session.
type Config struct {
	Callbacks

	// WaitForCallbacks blocks on the device between iterations instead of
	// polling continuously.
	WaitForCallbacks bool

	// Screen switches change detection to pixel comparison. It is borrowed
	// for the duration of the session and never modified.
	Screen *Screen

	// MaxStill is the dwell threshold. Zero or negative disables still
	// detection.
	MaxStill time.Duration
}

// Validate checks the configuration before any device interaction.
func (c Config) Validate() error {
	if c.Callbacks.Empty() {
		return ErrNoCallbacksConfigured
	}
	if c.Screen != nil {
		if err := c.Screen.Validate(); err != nil {
			return fmt.Errorf("invalid screen: %w", err)
		}
	}
	return nil
}

// Milliseconds converts a fractional millisecond count to a Duration.
func Milliseconds(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// StopReason says why a session loop ended.
type StopReason int

const (
	StopAborted StopReason = iota
	StopDeviceWait
	StopDeviceProcess
)

func (r StopReason) String() string {
	switch r {
	case StopAborted:
		return "aborted"
	case StopDeviceWait:
		return "device_wait_failed"
	case StopDeviceProcess:
		return "device_process_failed"
	default:
		return "unknown"
	}
}

// Report summarizes a finished session.
type Report struct {
	SessionID  string        `json:"session_id"`
	Iterations int           `json:"iterations"`
	Gaze       int           `json:"gaze"`
	Errors     int           `json:"errors"`
	Still      int           `json:"still"`
	Exit       int           `json:"exit"`
	LastPoint  Point         `json:"last_point"`
	Reason     StopReason    `json:"reason"`
	Duration   time.Duration `json:"duration"`

	// Err is the device failure that ended the loop, if any. It has already
	// been reported through the error handler and is not returned by
	// RunSession.
	Err error `json:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithGuard replaces DefaultGuard with g.
func WithGuard(g *Guard) Option {
	return func(e *Engine) {
		if g != nil {
			e.guard = g
		}
	}
}

// WithClock sets the time source used for dwell timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWaitTimeout sets the timeout of each blocking device wait.
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.waitTimeout = d
		}
	}
}

// Engine runs gaze sessions against devices obtained from an Opener.
type Engine struct {
	opener      device.Opener
	logger      *slog.Logger
	guard       *Guard
	now         func() time.Time
	waitTimeout time.Duration

	mu      sync.Mutex
	session device.Session

	state     atomic.Int32
	running   atomic.Bool
	sessionID atomic.Pointer[string]

	// run is the active session; only the loop goroutine touches it.
	run *SessionState
}

// New creates an engine.
func New(opener device.Opener, opts ...Option) *Engine {
	e := &Engine{
		opener:      opener,
		logger:      slog.Default(),
		guard:       DefaultGuard,
		now:         time.Now,
		waitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// SessionID returns the ID of the active session, or "" between sessions.
func (e *Engine) SessionID() string {
	if id := e.sessionID.Load(); id != nil {
		return *id
	}
	return ""
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// InitializeDevice opens and subscribes to a device. It is a no-op when a
// device is already initialized and fails while a session is active.
func (e *Engine) InitializeDevice(ctx context.Context) error {
	if e.guard.Active() {
		return ErrAlreadySessionActive
	}
	_, err := e.initialize(ctx)
	return err
}

func (e *Engine) initialize(ctx context.Context) (device.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return e.session, nil
	}

	prev := e.State()
	e.setState(StateInitializing)

	sess, err := e.opener.Open(ctx)
	if err != nil {
		e.setState(prev)
		e.logger.Error("device open failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDeviceInitFailed, err)
	}

	if err := sess.Subscribe(e.handleSample); err != nil {
		e.setState(prev)
		e.logger.Error("device subscribe failed", "backend", sess.Name(), "error", err)
		if cerr := sess.Close(); cerr != nil {
			e.logger.Warn("error closing device after failed subscribe", "error", cerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceSubscribeFailed, err)
	}

	e.session = sess
	e.setState(StateSubscribed)
	e.logger.Info("device initialized", "backend", sess.Name())

	return sess, nil
}

// TeardownDevice unsubscribes from and closes the device. It succeeds when
// nothing is initialized. On failure the device is kept so teardown can be
// retried.
func (e *Engine) TeardownDevice() error {
	if e.running.Load() {
		return ErrAlreadySessionActive
	}
	return e.teardown()
}

func (e *Engine) teardown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}

	if err := e.session.Unsubscribe(); err != nil {
		e.logger.Error("device unsubscribe failed", "error", err)
		return fmt.Errorf("%w: %w", ErrDeviceTeardownFailed, err)
	}
	if err := e.session.Close(); err != nil {
		e.logger.Error("device close failed", "error", err)
		return fmt.Errorf("%w: %w", ErrDeviceTeardownFailed, err)
	}

	e.logger.Info("device released", "backend", e.session.Name())
	e.session = nil
	if !e.running.Load() {
		e.setState(StateIdle)
	}

	return nil
}

// RunSession runs the polling loop until a handler aborts or the device
// fails, then dispatches the exit handler once.
//
// If no device was initialized, RunSession acquires one and releases it
// before returning. Device failures inside the loop end the session and are
// recorded in the report; the returned error covers configuration errors,
// device acquisition and the release of a device acquired here.
func (e *Engine) RunSession(ctx context.Context, cfg Config) (report Report, err error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if !e.guard.Acquire() {
		return Report{}, ErrAlreadySessionActive
	}
	e.running.Store(true)

	e.mu.Lock()
	owned := e.session == nil
	e.mu.Unlock()

	sess, err := e.initialize(ctx)
	if err != nil {
		e.running.Store(false)
		e.guard.Release()
		e.setState(StateIdle)
		return Report{}, err
	}

	started := e.now()
	st := newSessionState(uuid.NewString(), cfg, started)
	d := NewDispatcher(cfg.Callbacks)
	e.run = st
	e.sessionID.Store(&st.ID)

	// runs however the loop ends, a panicking handler included
	defer func() {
		e.setState(StateCleaningUp)
		d.Dispatch(SlotExit, st.LastPoint, st.Aborted, SlotExit.ObservesAbort())

		e.run = nil
		e.sessionID.Store(nil)
		e.running.Store(false)
		e.guard.Release()

		report.SessionID = st.ID
		report.Exit = d.Count(SlotExit)
		report.Duration = e.now().Sub(started)

		e.logger.Info("gaze session ended",
			"session_id", st.ID,
			"reason", report.Reason,
			"iterations", report.Iterations,
			"gaze", report.Gaze,
			"still", report.Still,
		)

		if owned {
			if terr := e.teardown(); terr != nil {
				e.setState(StateSubscribed)
				err = terr
				return
			}
		}

		e.mu.Lock()
		if e.session != nil {
			e.setState(StateSubscribed)
		} else {
			e.setState(StateIdle)
		}
		e.mu.Unlock()
	}()

	e.logger.Info("gaze session started",
		"session_id", st.ID,
		"backend", sess.Name(),
		"wait", cfg.WaitForCallbacks,
		"screen", cfg.Screen != nil,
		"max_still", cfg.MaxStill,
	)

	e.setState(StateRunning)
	report = e.loop(sess, st, d, cfg)
	return report, nil
}

// UseGaze initializes a device, runs one session and tears the device
// down. It fails if any of the three steps fails.
func (e *Engine) UseGaze(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if err := e.InitializeDevice(ctx); err != nil {
		return Report{}, err
	}

	report, runErr := e.RunSession(ctx, cfg)
	teardownErr := e.TeardownDevice()

	return report, errors.Join(runErr, teardownErr)
}

func (e *Engine) loop(sess device.Session, st *SessionState, d *Dispatcher, cfg Config) Report {
	report := Report{SessionID: st.ID, Reason: StopAborted}

	for !st.Aborted {
		report.Iterations++

		if cfg.WaitForCallbacks {
			err := guarded(func() error { return sess.WaitForCallbacks(e.waitTimeout) })
			if err != nil && !errors.Is(err, device.ErrTimeout) {
				report.Reason = StopDeviceWait
				report.Err = e.fail(st, d, fmt.Errorf("%w: %w", ErrDeviceWaitFailed, err))
				break
			}
		}

		st.PointChanged = false
		if err := guarded(sess.ProcessCallbacks); err != nil {
			report.Reason = StopDeviceProcess
			report.Err = e.fail(st, d, fmt.Errorf("%w: %w", ErrDeviceProcessFailed, err))
			break
		}

		if st.PointChanged {
			st.Aborted = d.Dispatch(SlotGaze, st.CurrentPoint, st.Aborted, SlotGaze.ObservesAbort())
			st.LastPoint = st.CurrentPoint
			st.dwell.Commit()
			continue
		}

		if st.dwell.Classify(e.now()) == Still {
			st.Aborted = d.Dispatch(SlotStill, st.LastPoint, st.Aborted, SlotStill.ObservesAbort())
		} else {
			st.Aborted = d.Dispatch(SlotError, st.LastPoint, st.Aborted, SlotError.ObservesAbort())
		}
	}

	report.Gaze = d.Count(SlotGaze)
	report.Errors = d.Count(SlotError)
	report.Still = d.Count(SlotStill)
	report.LastPoint = st.LastPoint
	return report
}

// guarded calls into the device, turning a driver panic into an error.
func guarded(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDevicePanic, r)
		}
	}()
	return call()
}

// fail reports a device failure through the error handler without letting
// it veto termination, and forces the loop to end.
func (e *Engine) fail(st *SessionState, d *Dispatcher, err error) error {
	e.logger.Error("gaze session device failure", "session_id", st.ID, "error", err)
	if !d.callbacks.Has(SlotError) {
		e.logger.Warn("no error handler registered, device failure absorbed", "session_id", st.ID)
	}
	d.Dispatch(SlotError, st.LastPoint, st.Aborted, false)
	st.Aborted = true
	return err
}

// handleSample is the normalizer stage. It runs synchronously inside
// ProcessCallbacks.
func (e *Engine) handleSample(s device.Sample) {
	st := e.run
	if st == nil || !s.Valid {
		return
	}

	st.CurrentPoint = Point{X: s.X, Y: s.Y}
	st.PointChanged = Changed(st.CurrentPoint, st.LastPoint, st.screen)
	if st.PointChanged {
		st.dwell.Observe(e.now())
	}

	debug.SampleLog("👁️  sample %s changed=%v\n", st.CurrentPoint, st.PointChanged)
}
