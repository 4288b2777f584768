package multicast

// FakeSender records sent payloads for test assertions.
type FakeSender struct {
	// Payloads contains every payload passed to Send.
	Payloads [][]byte

	// SendError, if set, will be returned by Send.
	SendError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSender creates a FakeSender for testing.
func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

// Send records the payload.
func (f *FakeSender) Send(payload []byte) error {
	if f.SendError != nil {
		return f.SendError
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	f.Payloads = append(f.Payloads, p)
	return nil
}

// Close marks the sender as closed.
func (f *FakeSender) Close() error {
	f.Closed = true
	return nil
}
