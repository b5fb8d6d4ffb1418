package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewHelloMessage creates a device hello message
func NewHelloMessage(deviceID, model string, sampleRate int) (*Message, error) {
	return NewMessage(TypeHello, HelloData{
		DeviceID:   deviceID,
		Model:      model,
		SampleRate: sampleRate,
	})
}

// NewSampleMessage creates a single-sample message
func NewSampleMessage(x, y float64, valid bool, ts int64) (*Message, error) {
	return NewMessage(TypeSample, SampleData{
		X:     x,
		Y:     y,
		Valid: valid,
		TS:    ts,
	})
}

// NewSamplesMessage creates a sample batch message
func NewSamplesMessage(samples []SampleData) (*Message, error) {
	return NewMessage(TypeSamples, SamplesData{Samples: samples})
}

// NewEventMessage creates a gaze event message
func NewEventMessage(event EventData) (*Message, error) {
	return NewMessage(TypeEvent, event)
}

// NewStatusMessage creates a status message
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetHelloData extracts hello data from a message
func (m *Message) GetHelloData() (*HelloData, error) {
	var data HelloData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSampleData extracts a sample from a message
func (m *Message) GetSampleData() (*SampleData, error) {
	var data SampleData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSamplesData extracts a sample batch from a message
func (m *Message) GetSamplesData() (*SamplesData, error) {
	var data SamplesData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEventData extracts event data from a message
func (m *Message) GetEventData() (*EventData, error) {
	var data EventData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatusData extracts status data from a message
func (m *Message) GetStatusData() (*StatusData, error) {
	var data StatusData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
