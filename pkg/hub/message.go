// Package hub fans gaze events and session status out to dashboard clients
// over websocket, using the channel-based broadcast pattern.
package hub

import "github.com/teslashibe/go-gaze/pkg/protocol"

// Message is a pre-encoded protocol message queued for broadcast.
type Message struct {
	// Kind is the protocol type of the encoded message, used for replay.
	Kind protocol.MessageType
	Data []byte
}
