package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsConnectionLifecycle(t *testing.T) {
	m := NewMetrics()

	m.RecordConnection()
	m.RecordConnection()
	assert.Equal(t, int64(2), m.TotalConnections)
	assert.Equal(t, int64(2), m.ActiveConnections)
	assert.Equal(t, int64(2), m.MaxConcurrent)

	m.RecordDisconnection(10 * time.Second)
	assert.Equal(t, int64(1), m.ActiveConnections)
	assert.Equal(t, 10*time.Second, m.AvgConnectionTime)
	// Max concurrent is sticky.
	assert.Equal(t, int64(2), m.MaxConcurrent)
}

func TestMetricsMessages(t *testing.T) {
	m := NewMetrics()

	m.RecordMessage("sent", 100, true)
	m.RecordMessage("received", 50, true)
	m.RecordMessage("sent", 150, false)

	assert.Equal(t, int64(2), m.MessagesSent)
	assert.Equal(t, int64(1), m.MessagesReceived)
	assert.Equal(t, int64(250), m.BytesSent)
	assert.Equal(t, int64(50), m.BytesReceived)
	assert.Equal(t, int64(1), m.MessageErrors)
}

func TestMetricsQueueDepthAndDrops(t *testing.T) {
	m := NewMetrics()

	m.RecordQueueDepth(10)
	m.RecordQueueDepth(4)
	assert.Equal(t, int64(10), m.MaxQueueDepth)

	m.RecordDroppedMessage()
	assert.Equal(t, int64(1), m.DroppedMessages)
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordConnection()
	m.RecordMessage("sent", 64, true)
	m.RecordDroppedMessage()

	snapshot := m.GetSnapshot()

	conns := snapshot["connections"].(map[string]interface{})
	assert.Equal(t, int64(1), conns["total"])
	assert.Equal(t, int64(1), conns["active"])

	msgs := snapshot["messages"].(map[string]interface{})
	assert.Equal(t, int64(1), msgs["sent"])
	assert.Equal(t, int64(1), msgs["dropped"])
}
