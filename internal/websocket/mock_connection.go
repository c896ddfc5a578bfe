package websocket

import (
	"errors"
	"sync"
	"time"
)

// errNoMoreReads ends a scripted read queue, terminating the read pump the
// same way a closed peer would.
var errNoMoreReads = errors.New("mock connection: read queue drained")

// MockFrame is one scripted or recorded websocket frame.
type MockFrame struct {
	Type int
	Data []byte
	Err  error
}

// MockConnection is an in-memory Connection for hub and pump tests. Writes
// are recorded; reads are served from a queue loaded with QueueRead.
type MockConnection struct {
	mu      sync.Mutex
	written []MockFrame
	reads   []MockFrame
	readIdx int
	closed  bool

	readLimit   int64
	pongHandler func(string) error
}

// NewMockConnection creates an empty mock.
func NewMockConnection() *MockConnection {
	return &MockConnection{}
}

// QueueRead appends a frame for ReadMessage to return.
func (m *MockConnection) QueueRead(messageType int, data []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, MockFrame{Type: messageType, Data: data, Err: err})
}

// Written returns a copy of every frame written so far.
func (m *MockConnection) Written() []MockFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockFrame, len(m.written))
	copy(out, m.written)
	return out
}

// IsClosed reports whether Close was called.
func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("mock connection: closed")
	}
	m.written = append(m.written, MockFrame{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil, errors.New("mock connection: closed")
	}
	if m.readIdx < len(m.reads) {
		frame := m.reads[m.readIdx]
		m.readIdx++
		return frame.Type, frame.Data, frame.Err
	}
	return 0, nil, errNoMoreReads
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pongHandler = h
}

func (m *MockConnection) RemoteAddr() string {
	return "127.0.0.1:0"
}
