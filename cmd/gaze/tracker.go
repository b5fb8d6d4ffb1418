package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-gaze/pkg/device"
)

// trackerOpener opens devices from the loaded config and remembers the
// websocket session it connected, so commands can say which tracker they
// are reading.
type trackerOpener struct {
	opener device.Opener
	ws     *device.WebSocketSession
}

func newTrackerOpener(cfg device.Config, logger *slog.Logger) *trackerOpener {
	return &trackerOpener{opener: device.NewOpener(cfg, logger)}
}

func (o *trackerOpener) Open(ctx context.Context) (device.Session, error) {
	sess, err := o.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	if ws, ok := sess.(*device.WebSocketSession); ok {
		o.ws = ws
		fmt.Printf("📡 Connected to %s\n", ws.Endpoint())
	}
	return sess, nil
}

// describe names the connected tracker, or returns "" for local backends.
func (o *trackerOpener) describe() string {
	if o.ws == nil {
		return ""
	}
	hello := o.ws.Hello()
	if hello == nil {
		return o.ws.Endpoint()
	}
	return fmt.Sprintf("%s %s (%d Hz) at %s", hello.Model, hello.DeviceID, hello.SampleRate, o.ws.Endpoint())
}
