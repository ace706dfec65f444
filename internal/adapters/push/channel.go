package push

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"unalone/internal/domain"
	"unalone/internal/metrics"
)

// reconnectDelay is the fixed backoff between reconnect attempts. The
// channel retries forever until Disconnect.
const reconnectDelay = time.Second

// frame is the wire envelope of one push notification.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Channel is the WebSocket connection to the push service. It is owned by
// the application context and tied to the auth lifecycle: constructed once,
// connected on login, disconnected on logout.
type Channel struct {
	url    string
	dialer *websocket.Dialer
	met    *metrics.Metrics
	logger *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]domain.PushHandler
	token    string
	closing  bool
}

// NewChannel returns a disconnected Channel for the given socket URL.
func NewChannel(socketURL string, met *metrics.Metrics, logger *slog.Logger) *Channel {
	return &Channel{
		url:      wsURL(socketURL),
		dialer:   websocket.DefaultDialer,
		met:      met,
		logger:   logger,
		handlers: map[string]domain.PushHandler{},
	}
}

// wsURL swaps the http(s) scheme for ws(s).
func wsURL(u string) string {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}

// Connect dials the push service with the given token. Calling Connect on an
// already-connected channel is a no-op.
func (c *Channel) Connect(token string) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.token = token
	c.closing = false
	c.mu.Unlock()

	conn, err := c.dial()
	if err != nil {
		return fmt.Errorf("connect push channel: %w", err)
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("push channel connected", "url", c.url)
	go c.readLoop(conn)
	return nil
}

func (c *Channel) dial() (*websocket.Conn, error) {
	header := http.Header{}
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := c.dialer.Dial(c.url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	return conn, nil
}

// Disconnect tears the connection down and stops the reconnect loop.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.closing = true
	conn := c.conn
	c.conn = nil
	c.token = ""
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
		c.logger.Info("push channel disconnected")
	}
}

// Subscribe registers the handler for the named event, replacing any
// previous one.
func (c *Channel) Subscribe(event string, h domain.PushHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

// Unsubscribe drops the handler for the named event.
func (c *Channel) Unsubscribe(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// Emit sends a client-initiated event over the channel.
func (c *Channel) Emit(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode emit payload: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("push channel not connected")
	}
	if err := c.conn.WriteJSON(frame{Event: event, Payload: raw}); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// readLoop dispatches inbound frames until the connection drops, then hands
// over to the reconnect loop unless the channel was closed deliberately.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closing := c.closing
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			if closing {
				return
			}
			c.logger.Warn("push channel read failed", "err", err)
			c.reconnect()
			return
		}
		c.dispatch(raw)
	}
}

func (c *Channel) dispatch(raw []byte) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil || f.Event == "" {
		c.met.MalformedPayloads.Inc()
		c.logger.Warn("discarding malformed push frame")
		return
	}
	c.mu.Lock()
	h := c.handlers[f.Event]
	c.mu.Unlock()
	if h == nil {
		return
	}
	h(f.Payload)
}

// reconnect retries with fixed backoff until it succeeds or the channel is
// closed.
func (c *Channel) reconnect() {
	for {
		time.Sleep(reconnectDelay)

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		conn, err := c.dial()
		if err != nil {
			c.logger.Warn("push channel reconnect failed", "err", err)
			continue
		}

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.met.PushReconnects.Inc()
		c.logger.Info("push channel reconnected")
		go c.readLoop(conn)
		return
	}
}
