package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// Packet is one framed message on the transport: a topic plus an opaque
// payload for that topic's decoder.
type Packet struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Transport carries topic-framed packets over a bidirectional connection.
type Transport interface {
	// Connect establishes the connection.
	Connect(ctx context.Context) error

	// Send writes a packet. Returns domain.ErrChannelClosed once closed.
	Send(ctx context.Context, packet Packet) error

	// Packets returns the inbound packet stream. The channel closes when
	// the connection ends, locally or remotely.
	Packets() <-chan Packet

	// Close tears the connection down.
	Close() error
}

// Verify interface compliance
var _ Transport = (*WebsocketTransport)(nil)

const (
	writeTimeout   = 10 * time.Second
	inboundBuffer  = 64
	maxPacketBytes = 1 << 20
)

// WebsocketTransport frames packets as JSON text messages over a websocket.
type WebsocketTransport struct {
	url    string
	header http.Header
	dialer *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	closed  bool
	packets chan Packet

	// writeMu serializes frame writes; the websocket permits one writer.
	writeMu sync.Mutex
}

// NewWebsocketTransport creates a transport that dials url on Connect.
// The header typically carries the minted room token.
func NewWebsocketTransport(url string, header http.Header) *WebsocketTransport {
	return &WebsocketTransport{
		url:     url,
		header:  header,
		dialer:  websocket.DefaultDialer,
		packets: make(chan Packet, inboundBuffer),
	}
}

// Connect dials the websocket and starts the read pump.
func (t *WebsocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrChannelClosed
	}
	if t.conn != nil {
		return nil
	}

	conn, resp, err := t.dialer.DialContext(ctx, t.url, t.header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: status %d: %w", t.url, resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", t.url, err)
	}
	conn.SetReadLimit(maxPacketBytes)
	t.conn = conn

	go t.readPump(conn)
	return nil
}

// Send writes a packet as a JSON text frame.
func (t *WebsocketTransport) Send(ctx context.Context, packet Packet) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return domain.ErrChannelClosed
	}

	data, err := json.Marshal(packet)
	if err != nil {
		return fmt.Errorf("marshal packet: %w", err)
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return nil
}

// Packets returns the inbound packet stream.
func (t *WebsocketTransport) Packets() <-chan Packet {
	return t.packets
}

// Close tears the connection down. Safe to call more than once.
func (t *WebsocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.conn != nil {
		t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return t.conn.Close()
	}
	return nil
}

// readPump forwards inbound frames until the connection ends. Malformed
// frames are dropped; the packet channel closes on exit so receivers see
// remote teardown.
func (t *WebsocketTransport) readPump(conn *websocket.Conn) {
	defer close(t.packets)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var packet Packet
		if err := json.Unmarshal(data, &packet); err != nil {
			continue
		}

		select {
		case t.packets <- packet:
		default:
			// Drop when the receiver is not keeping up; there is no
			// buffering or replay contract.
		}
	}
}
