package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "sample message",
			msgType: TypeSample,
			data:    SampleData{X: 0.25, Y: 0.75, Valid: true},
			wantErr: false,
		},
		{
			name:    "hello message",
			msgType: TypeHello,
			data:    HelloData{DeviceID: "sim-1", SampleRate: 60},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeEvent,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestSampleMessage(t *testing.T) {
	msg, err := NewSampleMessage(0.1, 0.9, true, 123456)
	if err != nil {
		t.Fatalf("NewSampleMessage() error = %v", err)
	}

	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeSample {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeSample)
	}

	sample, err := parsed.GetSampleData()
	if err != nil {
		t.Fatalf("GetSampleData() error = %v", err)
	}
	if sample.X != 0.1 || sample.Y != 0.9 || !sample.Valid || sample.TS != 123456 {
		t.Errorf("sample = %+v", sample)
	}
}

func TestSamplesMessage_KeepsOrder(t *testing.T) {
	in := []SampleData{
		{X: 0.1, Y: 0.1, Valid: true},
		{Valid: false},
		{X: 0.3, Y: 0.3, Valid: true},
	}

	msg, err := NewSamplesMessage(in)
	if err != nil {
		t.Fatalf("NewSamplesMessage() error = %v", err)
	}

	batch, err := msg.GetSamplesData()
	if err != nil {
		t.Fatalf("GetSamplesData() error = %v", err)
	}
	if len(batch.Samples) != len(in) {
		t.Fatalf("got %d samples, want %d", len(batch.Samples), len(in))
	}
	for i := range in {
		if batch.Samples[i] != in[i] {
			t.Errorf("sample %d = %+v, want %+v", i, batch.Samples[i], in[i])
		}
	}
}

func TestEventMessage_PixelOptional(t *testing.T) {
	msg, err := NewEventMessage(EventData{Event: "gaze", X: 0.5, Y: 0.5})
	if err != nil {
		t.Fatalf("NewEventMessage() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(msg.Data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := raw["px"]; ok {
		t.Error("px should be omitted without a screen")
	}

	px, py := 960, 540
	msg, _ = NewEventMessage(EventData{Event: "still", X: 0.5, Y: 0.5, PixelX: &px, PixelY: &py})
	ev, err := msg.GetEventData()
	if err != nil {
		t.Fatalf("GetEventData() error = %v", err)
	}
	if ev.PixelX == nil || *ev.PixelX != 960 || ev.PixelY == nil || *ev.PixelY != 540 {
		t.Errorf("pixel = %v,%v", ev.PixelX, ev.PixelY)
	}
}

func TestPingPongMessage(t *testing.T) {
	ping, err := NewPingMessage("abc")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}
	pingData, err := ping.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "abc" {
		t.Errorf("ID = %s, want abc", pingData.ID)
	}

	pong, err := NewPongMessage("abc", 1000, 1042)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	pongData, err := pong.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.LatencyMs != 42 {
		t.Errorf("LatencyMs = %d, want 42", pongData.LatencyMs)
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json"},
		{"empty object", "{}"},
		{"wrong type field", `{"type": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMessage([]byte(tt.data)); err == nil {
				t.Error("ParseMessage() should fail")
			}
		})
	}
}

func TestParseData_NilData(t *testing.T) {
	msg := &Message{Type: TypePing}
	var data PingData
	if err := msg.ParseData(&data); err != nil {
		t.Errorf("ParseData() on nil data error = %v", err)
	}
}
