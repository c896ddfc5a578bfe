package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the transport surface the client pumps need. Production
// wraps a gorilla connection; tests substitute MockConnection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// gorillaConn adapts *websocket.Conn to Connection. Only RemoteAddr needs
// translation; gorilla hands back a net.Addr that can be nil once closed.
type gorillaConn struct {
	conn *websocket.Conn
}

// WrapConn adapts a gorilla connection for the client pumps.
func WrapConn(conn *websocket.Conn) Connection {
	return gorillaConn{conn: conn}
}

func (g gorillaConn) WriteMessage(messageType int, data []byte) error {
	return g.conn.WriteMessage(messageType, data)
}

func (g gorillaConn) ReadMessage() (int, []byte, error) {
	return g.conn.ReadMessage()
}

func (g gorillaConn) Close() error {
	return g.conn.Close()
}

func (g gorillaConn) SetReadDeadline(t time.Time) error {
	return g.conn.SetReadDeadline(t)
}

func (g gorillaConn) SetWriteDeadline(t time.Time) error {
	return g.conn.SetWriteDeadline(t)
}

func (g gorillaConn) SetReadLimit(limit int64) {
	g.conn.SetReadLimit(limit)
}

func (g gorillaConn) SetPongHandler(h func(string) error) {
	g.conn.SetPongHandler(h)
}

func (g gorillaConn) RemoteAddr() string {
	if addr := g.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
