package centralsystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhissng/chargehub/ocpp"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// stationConn is the websocket of one connected station. Writes are
// serialized; reads happen on the serving goroutine only.
type stationConn struct {
	conn       *websocket.Conn
	identifier string
	tenantID   string

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newStationConn(conn *websocket.Conn, identifier, tenantID string) *stationConn {
	return &stationConn{
		conn:       conn,
		identifier: identifier,
		tenantID:   tenantID,
		done:       make(chan struct{}),
	}
}

func (c *stationConn) key() string {
	return stationKey(c.tenantID, c.identifier)
}

// ReadFrame blocks for the next text message. A frame that cannot be decoded
// is returned together with ocpp.ErrMalformedFrame and whatever id was read.
func (c *stationConn) ReadFrame() (ocpp.Frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return ocpp.Frame{}, err
	}
	var frame ocpp.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		if !errors.Is(err, ocpp.ErrMalformedFrame) && !errors.Is(err, ocpp.ErrUnknownFrameType) {
			err = fmt.Errorf("%w: %v", ocpp.ErrMalformedFrame, err)
		}
		return ocpp.Frame{ID: messageID(data)}, err
	}
	return frame, nil
}

// WriteFrame sends frame as a text message.
func (c *stationConn) WriteFrame(frame ocpp.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// expectTraffic arms a read deadline of two ping intervals, renewed by pongs.
// It must be called before the read loop starts.
func (c *stationConn) expectTraffic(interval time.Duration) {
	extend := func() { _ = c.conn.SetReadDeadline(time.Now().Add(2 * interval)) }
	extend()
	c.conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})
}

// keepAlive pings the station every interval until the connection closes.
func (c *stationConn) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Close sends a close frame with code and closes the socket once.
func (c *stationConn) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// messageID extracts the id of a frame that failed to decode, "" when absent.
func messageID(data []byte) string {
	var parts []json.RawMessage
	if json.Unmarshal(data, &parts) != nil || len(parts) < 2 {
		return ""
	}
	var id string
	if json.Unmarshal(parts[1], &id) != nil {
		return ""
	}
	return id
}

func stationKey(tenantID, identifier string) string {
	return tenantID + "/" + identifier
}
