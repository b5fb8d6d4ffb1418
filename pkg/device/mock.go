package device

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MockSession is a device session without hardware.
//
// It either replays scripted batches (one batch per ProcessCallbacks call,
// never blocking) or generates samples from a Synth in real time. Failures
// can be injected for each operation.
type MockSession struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	subscriber SampleFunc
	closed     bool

	// Scripted mode
	batches [][]Sample

	// Synthetic mode
	synth    *Synth
	lastTick time.Time

	// Failure injection
	subscribeErr     error
	waitErr          error
	waitFailAfter    int
	processErr       error
	processFailAfter int
	unsubscribeErr   error
	unsubscribeFails int
	closeErr         error
	closeFails       int

	waitCalls    int
	processCalls int

	// Stats
	delivered atomic.Int64
}

// MockOption configures a MockSession.
type MockOption func(*MockSession)

// WithBatches scripts the samples delivered by successive ProcessCallbacks
// calls. Once exhausted, nothing more is delivered.
func WithBatches(batches ...[]Sample) MockOption {
	return func(m *MockSession) {
		m.batches = append(m.batches, batches...)
	}
}

// WithSynth makes the session generate samples from s in real time.
func WithSynth(s *Synth) MockOption {
	return func(m *MockSession) {
		m.synth = s
	}
}

// WithSubscribeError makes Subscribe fail with err.
func WithSubscribeError(err error) MockOption {
	return func(m *MockSession) {
		m.subscribeErr = err
	}
}

// WithWaitError makes WaitForCallbacks fail with err after n successful calls.
func WithWaitError(n int, err error) MockOption {
	return func(m *MockSession) {
		m.waitFailAfter = n
		m.waitErr = err
	}
}

// WithProcessError makes ProcessCallbacks fail with err after n successful calls.
func WithProcessError(n int, err error) MockOption {
	return func(m *MockSession) {
		m.processFailAfter = n
		m.processErr = err
	}
}

// WithUnsubscribeError makes the next times calls to Unsubscribe fail with err.
func WithUnsubscribeError(times int, err error) MockOption {
	return func(m *MockSession) {
		m.unsubscribeFails = times
		m.unsubscribeErr = err
	}
}

// WithCloseError makes the next times calls to Close fail with err.
func WithCloseError(times int, err error) MockOption {
	return func(m *MockSession) {
		m.closeFails = times
		m.closeErr = err
	}
}

// NewMockSession creates a new mock session.
func NewMockSession(cfg Config, logger *slog.Logger, opts ...MockOption) *MockSession {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockSession{
		cfg:    cfg,
		logger: logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Subscribe attaches fn as the sample subscriber.
func (m *MockSession) Subscribe(fn SampleFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.subscribeErr != nil {
		return m.subscribeErr
	}

	m.subscriber = fn
	m.lastTick = time.Now()

	m.logger.Info("mock gaze device subscribed",
		"scripted_batches", len(m.batches),
		"synthetic", m.synth != nil,
	)

	return nil
}

// WaitForCallbacks blocks until a synthetic sample is due. Scripted
// sessions never block: they report pending batches or time out at once.
func (m *MockSession) WaitForCallbacks(timeout time.Duration) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.waitCalls++
	if m.waitErr != nil && m.waitCalls > m.waitFailAfter {
		m.mu.Unlock()
		return m.waitErr
	}

	if m.synth == nil {
		pending := len(m.batches) > 0
		m.mu.Unlock()
		if pending {
			return nil
		}
		return ErrTimeout
	}

	due := m.lastTick.Add(m.synth.Interval())
	m.mu.Unlock()

	wait := time.Until(due)
	if wait <= 0 {
		return nil
	}
	if wait > timeout {
		time.Sleep(timeout)
		return ErrTimeout
	}
	time.Sleep(wait)
	return nil
}

// ProcessCallbacks delivers pending samples to the subscriber.
func (m *MockSession) ProcessCallbacks() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.processCalls++
	if m.processErr != nil && m.processCalls > m.processFailAfter {
		m.mu.Unlock()
		return m.processErr
	}
	fn := m.subscriber
	if fn == nil {
		m.mu.Unlock()
		return ErrNotSubscribed
	}

	var batch []Sample
	if m.synth != nil {
		batch = m.generateDue()
	} else if len(m.batches) > 0 {
		batch = m.batches[0]
		m.batches = m.batches[1:]
	}
	m.mu.Unlock()

	for _, s := range batch {
		fn(s)
		m.delivered.Add(1)
	}

	return nil
}

// generateDue produces the synthetic samples that came due since the last
// call, capped at the queue size. Caller holds m.mu.
func (m *MockSession) generateDue() []Sample {
	interval := m.synth.Interval()
	due := int(time.Since(m.lastTick) / interval)
	if due <= 0 {
		return nil
	}
	if due > m.cfg.QueueSize && m.cfg.QueueSize > 0 {
		m.logger.Debug("mock device: queue full, dropping samples", "dropped", due-m.cfg.QueueSize)
		due = m.cfg.QueueSize
	}
	m.lastTick = m.lastTick.Add(time.Duration(due) * interval)

	out := make([]Sample, due)
	for i := range out {
		out[i] = m.synth.Next()
	}
	return out
}

// Unsubscribe detaches the subscriber.
func (m *MockSession) Unsubscribe() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unsubscribeFails > 0 {
		m.unsubscribeFails--
		return m.unsubscribeErr
	}

	m.subscriber = nil
	return nil
}

// Close releases the session.
func (m *MockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closeFails > 0 {
		m.closeFails--
		return m.closeErr
	}
	if m.closed {
		return nil
	}

	m.closed = true
	m.subscriber = nil
	m.logger.Info("mock gaze device closed", "delivered", m.delivered.Load())

	return nil
}

// Name returns "mock".
func (m *MockSession) Name() string {
	return string(BackendMock)
}

// Closed reports whether Close succeeded.
func (m *MockSession) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Stats returns session statistics.
func (m *MockSession) Stats() SessionStats {
	m.mu.Lock()
	subscribed := m.subscriber != nil
	m.mu.Unlock()

	return SessionStats{
		SamplesDelivered: m.delivered.Load(),
		Subscribed:       subscribed,
		Backend:          string(BackendMock),
	}
}

// Ensure MockSession implements SessionWithStats.
var _ SessionWithStats = (*MockSession)(nil)
