package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10

	sendBuffer    = 256
	inboundBuffer = 256
)

// Client is a websocket Conn. It runs three goroutines: the read pump, the
// write pump and a single dispatcher that calls handlers in arrival order.
type Client struct {
	conn *websocket.Conn
	log  *zap.SugaredLogger

	send    chan []byte
	inbound chan models.Event
	done    chan struct{}
	once    sync.Once

	mu       sync.RWMutex
	handlers map[string][]Handler
	joined   map[string]struct{}
}

type Option func(*dialOptions)

type dialOptions struct {
	log    *zap.SugaredLogger
	dialer *websocket.Dialer
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *dialOptions) { o.log = log }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(o *dialOptions) { o.dialer = d }
}

// Dial opens the socket at endpoint, authenticating with a bearer token.
func Dial(ctx context.Context, endpoint, token string, opts ...Option) (*Client, error) {
	o := dialOptions{dialer: websocket.DefaultDialer}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse socket url: %w", err)
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := o.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	c := newClient(conn, logging.OrNop(o.log))
	c.run()
	return c, nil
}

func newClient(conn *websocket.Conn, log *zap.SugaredLogger) *Client {
	return &Client{
		conn:     conn,
		log:      log,
		send:     make(chan []byte, sendBuffer),
		inbound:  make(chan models.Event, inboundBuffer),
		done:     make(chan struct{}),
		handlers: make(map[string][]Handler),
		joined:   make(map[string]struct{}),
	}
}

func (c *Client) run() {
	go c.writePump()
	go c.readPump()
	go c.dispatch()
}

// On registers h for event.
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// JoinRoom emits joinRoom once per room.
func (c *Client) JoinRoom(roomID string) error {
	c.mu.Lock()
	if _, ok := c.joined[roomID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.joined[roomID] = struct{}{}
	c.mu.Unlock()

	if err := c.Emit(models.EventJoinRoom, roomID, models.RoomPayload{RoomID: roomID}); err != nil {
		c.mu.Lock()
		delete(c.joined, roomID)
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Client) LeaveRoom(roomID string) error {
	c.mu.Lock()
	_, ok := c.joined[roomID]
	delete(c.joined, roomID)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.Emit(models.EventLeaveRoom, roomID, models.RoomPayload{RoomID: roomID})
}

// Emit encodes the event and hands it to the write pump.
func (c *Client) Emit(event, roomID string, payload any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	ev, err := models.NewEvent(event, roomID, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrBufferFull
	}
}

// Disconnect closes the connection. It is safe to call more than once.
func (c *Client) Disconnect() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) readPump() {
	defer func() {
		c.Disconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warnw("socket read failed", "error", err)
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			c.log.Warnw("dropping undecodable event", "error", err)
			continue
		}

		select {
		case c.inbound <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warnw("socket write failed", "error", err)
				c.Disconnect()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Disconnect()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.flush()
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever was queued before Disconnect, so a final endCall or
// leaveRoom still reaches the relay.
func (c *Client) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) dispatch() {
	for {
		select {
		case ev := <-c.inbound:
			c.mu.RLock()
			hs := append([]Handler(nil), c.handlers[ev.Name]...)
			c.mu.RUnlock()
			for _, h := range hs {
				h(ev)
			}
		case <-c.done:
			return
		}
	}
}
