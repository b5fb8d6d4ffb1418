package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-gaze/pkg/protocol"
)

const (
	// writeWait is how long to wait for a control write to complete
	writeWait = 2 * time.Second

	// maxMessageSize bounds a single incoming message
	maxMessageSize = 64 * 1024
)

// WebSocketSession reads gaze samples from a websocket endpoint speaking
// the protocol package's messages.
//
// A reader goroutine queues incoming samples; they reach the subscriber
// only from ProcessCallbacks. A broken connection is reported by the next
// WaitForCallbacks or ProcessCallbacks once the queue is drained.
type WebSocketSession struct {
	cfg      Config
	logger   *slog.Logger
	endpoint string

	conn    *websocket.Conn
	writeMu sync.Mutex

	queue chan Sample
	ready chan struct{}
	done  chan struct{}

	mu         sync.Mutex
	subscriber SampleFunc
	closed     bool
	readErr    error
	hello      *protocol.HelloData

	subscribed atomic.Bool
	delivered  atomic.Int64
	dropped    atomic.Int64
}

// DialWebSocket connects to the first endpoint in cfg.Endpoints that
// accepts a connection.
func DialWebSocket(ctx context.Context, cfg Config, logger *slog.Logger) (*WebSocketSession, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoDevice
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}

	var errs []error
	for _, endpoint := range cfg.Endpoints {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		conn, _, err := dialer.DialContext(dialCtx, endpoint, nil)
		cancel()
		if err != nil {
			logger.Warn("gaze endpoint unavailable", "endpoint", endpoint, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}

		s := newWebSocketSession(conn, endpoint, cfg, logger)
		go s.readLoop()

		logger.Info("connected to gaze endpoint", "endpoint", endpoint)
		return s, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoDevice, errors.Join(errs...))
}

func newWebSocketSession(conn *websocket.Conn, endpoint string, cfg Config, logger *slog.Logger) *WebSocketSession {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultConfig().QueueSize
	}
	conn.SetReadLimit(maxMessageSize)

	return &WebSocketSession{
		cfg:      cfg,
		logger:   logger,
		endpoint: endpoint,
		conn:     conn,
		queue:    make(chan Sample, size),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (s *WebSocketSession) readLoop() {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !s.closed {
				s.readErr = fmt.Errorf("read from %s: %w", s.endpoint, err)
				s.logger.Error("gaze endpoint read failed", "endpoint", s.endpoint, "error", err)
			}
			s.mu.Unlock()
			s.signal()
			return
		}
		s.handleMessage(data)
	}
}

func (s *WebSocketSession) handleMessage(data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.logger.Debug("ignoring malformed gaze message", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeHello:
		hello, err := msg.GetHelloData()
		if err == nil {
			s.mu.Lock()
			s.hello = hello
			s.mu.Unlock()
			s.logger.Info("gaze device hello",
				"device_id", hello.DeviceID,
				"model", hello.Model,
				"sample_rate", hello.SampleRate,
			)
		}

	case protocol.TypeSample:
		sample, err := msg.GetSampleData()
		if err == nil {
			s.enqueue(*sample)
		}

	case protocol.TypeSamples:
		batch, err := msg.GetSamplesData()
		if err == nil {
			for _, sample := range batch.Samples {
				s.enqueue(sample)
			}
		}

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err == nil {
			s.sendPong(ping.ID, msg.Timestamp)
		}
	}
}

func (s *WebSocketSession) enqueue(d protocol.SampleData) {
	if !s.subscribed.Load() {
		return
	}

	sample := Sample{X: d.X, Y: d.Y, Valid: d.Valid}
	if d.TS != 0 {
		sample.Timestamp = time.UnixMicro(d.TS)
	}

	select {
	case s.queue <- sample:
		s.signal()
	default:
		// Queue full - the consumer is too slow
		s.dropped.Add(1)
	}
}

func (s *WebSocketSession) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *WebSocketSession) sendPong(id string, pingTS int64) {
	msg, err := protocol.NewPongMessage(id, pingTS, time.Now().UnixMilli())
	if err != nil {
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("pong write failed", "error", err)
	}
}

func (s *WebSocketSession) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.readErr
}

// Subscribe attaches fn as the sample subscriber.
func (s *WebSocketSession) Subscribe(fn SampleFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.readErr != nil {
		return s.readErr
	}

	s.subscriber = fn
	s.subscribed.Store(true)
	return nil
}

// WaitForCallbacks blocks until samples are queued, the connection fails
// or the timeout elapses.
func (s *WebSocketSession) WaitForCallbacks(timeout time.Duration) error {
	if len(s.queue) > 0 {
		return nil
	}
	if err := s.failure(); err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.ready:
		if len(s.queue) > 0 {
			return nil
		}
		if err := s.failure(); err != nil {
			return err
		}
		return ErrTimeout
	case <-s.done:
		if len(s.queue) > 0 {
			return nil
		}
		if err := s.failure(); err != nil {
			return err
		}
		return ErrClosed
	case <-timer.C:
		return ErrTimeout
	}
}

// ProcessCallbacks delivers every queued sample to the subscriber.
func (s *WebSocketSession) ProcessCallbacks() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	fn := s.subscriber
	s.mu.Unlock()

	if fn == nil {
		return ErrNotSubscribed
	}

	// only what is queued now, so a fast source cannot starve the loop
	for n := len(s.queue); n > 0; n-- {
		fn(<-s.queue)
		s.delivered.Add(1)
	}
	return s.failure()
}

// Unsubscribe stops sample delivery. Queued samples are discarded.
func (s *WebSocketSession) Unsubscribe() error {
	s.mu.Lock()
	s.subscriber = nil
	s.mu.Unlock()
	s.subscribed.Store(false)

	for {
		select {
		case <-s.queue:
		default:
			return nil
		}
	}
}

// Close closes the connection and waits for the reader to exit.
func (s *WebSocketSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.subscriber = nil
	s.mu.Unlock()
	s.subscribed.Store(false)

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	err := s.conn.Close()

	select {
	case <-s.done:
	case <-time.After(writeWait):
		s.logger.Warn("gaze reader did not exit", "endpoint", s.endpoint)
	}

	s.logger.Info("gaze endpoint closed",
		"endpoint", s.endpoint,
		"delivered", s.delivered.Load(),
		"dropped", s.dropped.Load(),
	)

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// Name returns "websocket".
func (s *WebSocketSession) Name() string {
	return string(BackendWebSocket)
}

// Endpoint returns the URL the session is connected to.
func (s *WebSocketSession) Endpoint() string {
	return s.endpoint
}

// Hello returns the device description, or nil if none was received.
func (s *WebSocketSession) Hello() *protocol.HelloData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hello
}

// Stats returns session statistics.
func (s *WebSocketSession) Stats() SessionStats {
	return SessionStats{
		SamplesDelivered: s.delivered.Load(),
		SamplesDropped:   s.dropped.Load(),
		Subscribed:       s.subscribed.Load(),
		Backend:          string(BackendWebSocket),
	}
}

// Ensure WebSocketSession implements SessionWithStats.
var _ SessionWithStats = (*WebSocketSession)(nil)
