package websocket

import (
	"sync"
	"time"
)

// connectionTimeWindow bounds how many recent connection durations feed the
// average.
const connectionTimeWindow = 100

// Metrics tracks hub traffic counters. All methods are safe for concurrent
// use by the hub loop and the client pumps.
type Metrics struct {
	mu sync.RWMutex

	TotalConnections  int64
	ActiveConnections int64
	MaxConcurrent     int64
	AvgConnectionTime time.Duration

	MessagesSent     int64
	MessagesReceived int64
	BytesSent        int64
	BytesReceived    int64
	MessageErrors    int64

	AvgQueueDepth   int64
	MaxQueueDepth   int64
	DroppedMessages int64

	StartedAt       time.Time
	connectionTimes []time.Duration
}

// NewMetrics creates a zeroed metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		StartedAt:       time.Now(),
		connectionTimes: make([]time.Duration, 0, connectionTimeWindow),
	}
}

// RecordConnection counts a newly registered client.
func (m *Metrics) RecordConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections++
	m.ActiveConnections++
	if m.ActiveConnections > m.MaxConcurrent {
		m.MaxConcurrent = m.ActiveConnections
	}
}

// RecordDisconnection counts a departing client and folds its lifetime into
// the rolling average.
func (m *Metrics) RecordDisconnection(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActiveConnections--

	m.connectionTimes = append(m.connectionTimes, duration)
	if len(m.connectionTimes) > connectionTimeWindow {
		m.connectionTimes = m.connectionTimes[1:]
	}
	var total time.Duration
	for _, d := range m.connectionTimes {
		total += d
	}
	m.AvgConnectionTime = total / time.Duration(len(m.connectionTimes))
}

// RecordMessage counts one frame in the given direction ("sent" or
// "received").
func (m *Metrics) RecordMessage(direction string, size int64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch direction {
	case "sent":
		m.MessagesSent++
		m.BytesSent += size
	case "received":
		m.MessagesReceived++
		m.BytesReceived += size
	}
	if !success {
		m.MessageErrors++
	}
}

// RecordQueueDepth samples the broadcast backlog.
func (m *Metrics) RecordQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if depth > m.MaxQueueDepth {
		m.MaxQueueDepth = depth
	}
	if m.AvgQueueDepth == 0 {
		m.AvgQueueDepth = depth
	} else {
		m.AvgQueueDepth = (m.AvgQueueDepth*9 + depth) / 10
	}
}

// RecordDroppedMessage counts a frame dropped because a client's send buffer
// was full.
func (m *Metrics) RecordDroppedMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DroppedMessages++
}

// GetSnapshot returns the counters grouped for the metrics endpoint.
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"connections": map[string]interface{}{
			"total":           m.TotalConnections,
			"active":          m.ActiveConnections,
			"max_concurrent":  m.MaxConcurrent,
			"avg_duration_ms": m.AvgConnectionTime.Milliseconds(),
		},
		"messages": map[string]interface{}{
			"sent":           m.MessagesSent,
			"received":       m.MessagesReceived,
			"bytes_sent":     m.BytesSent,
			"bytes_received": m.BytesReceived,
			"errors":         m.MessageErrors,
			"dropped":        m.DroppedMessages,
		},
		"queue": map[string]interface{}{
			"avg_depth": m.AvgQueueDepth,
			"max_depth": m.MaxQueueDepth,
		},
		"uptime_seconds": time.Since(m.StartedAt).Seconds(),
	}
}
