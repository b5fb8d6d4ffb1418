package hub

import (
	"context"
	"testing"
	"time"

	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// attach registers a bare client without a websocket connection.
func attach(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan Message, sendBuffer)}
	select {
	case h.register <- c:
	case <-time.After(time.Second):
		t.Fatal("Timeout registering client")
	}
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
		return Message{}
	}
}

func TestHub_Broadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	a := attach(t, h)
	b := attach(t, h)

	msg, err := protocol.NewEventMessage(protocol.EventData{Event: "gaze", X: 0.5, Y: 0.5})
	if err != nil {
		t.Fatalf("NewEventMessage failed: %v", err)
	}
	if err := h.BroadcastMessage(msg); err != nil {
		t.Fatalf("BroadcastMessage failed: %v", err)
	}

	for _, c := range []*Client{a, b} {
		got := receive(t, c)
		if got.Kind != protocol.TypeEvent {
			t.Errorf("Kind = %s, want event", got.Kind)
		}
	}

	if h.ClientCount() != 2 {
		t.Errorf("ClientCount = %d, want 2", h.ClientCount())
	}
}

func TestHub_ReplaysLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test", WithReplay(protocol.TypeStatus))
	go h.Run(ctx)

	// an observer makes sure both broadcasts were processed
	observer := attach(t, h)
	h.BroadcastJSON(protocol.TypeStatus, protocol.StatusData{State: "idle"})
	h.BroadcastJSON(protocol.TypeStatus, protocol.StatusData{State: "running"})
	h.BroadcastJSON(protocol.TypeEvent, protocol.EventData{Event: "gaze"})
	for i := 0; i < 3; i++ {
		receive(t, observer)
	}

	late := attach(t, h)
	got := receive(t, late)
	if got.Kind != protocol.TypeStatus {
		t.Fatalf("Kind = %s, want status", got.Kind)
	}
	if string(got.Data) != `{"state":"running","events":0}` {
		t.Errorf("replayed %s, want latest status", got.Data)
	}

	select {
	case extra := <-late.send:
		t.Errorf("unexpected replay of %s", extra.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := New("test")
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := attach(t, h)
	cancel()
	<-stopped

	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed")
	}
	if h.IsRunning() {
		t.Error("hub should not be running")
	}

	// registering after stop does not block
	if NewClient(h, nil) != nil {
		t.Error("NewClient should return nil on a stopped hub")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	slow := &Client{hub: h, send: make(chan Message)} // unbuffered, never read
	h.register <- slow

	h.BroadcastJSON(protocol.TypeEvent, protocol.EventData{Event: "gaze"})

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Error("slow client should be dropped")
	}
}
