package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/satindergrewal/pianochords/internal/session"
)

const (
	writeWait  = 5 * time.Second
	clientSend = 16
)

// Message is pushed to every websocket client.
type Message struct {
	Type  string       `json:"type"`
	State session.View `json:"state"`
}

// Hub pushes session changes to websocket clients. Bursts of changes are
// coalesced so clients receive only the latest view.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	latest   session.View
	snapshot func() session.View

	upgrader websocket.Upgrader
	schedule func(func())
	log      *log.Logger
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. snapshot supplies the view sent to a client on
// connect; allowOrigin gates the websocket handshake.
func NewHub(snapshot func() session.View, wait time.Duration, allowOrigin func(*http.Request) bool, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		clients:  make(map[*client]struct{}),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      logger,
	}
	if wait > 0 {
		h.schedule = debounce.New(wait)
	} else {
		h.schedule = func(f func()) { f() }
	}
	return h
}

// Publish queues v for delivery to every client.
func (h *Hub) Publish(v session.View) {
	h.mu.Lock()
	h.latest = v
	h.mu.Unlock()
	h.schedule(h.flush)
}

func (h *Hub) flush() {
	h.mu.Lock()
	v := h.latest
	h.mu.Unlock()

	data, err := json.Marshal(Message{Type: "state", State: v})
	if err != nil {
		h.log.Error("encode state", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("websocket client too slow, dropping push", "id", c.id)
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "err", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, clientSend)}

	if h.snapshot != nil {
		if data, err := json.Marshal(Message{Type: "state", State: h.snapshot()}); err == nil {
			c.send <- data
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("websocket client connected", "id", c.id, "total", n)

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound messages and unregisters the client once the
// connection fails.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		n := len(h.clients)
		h.mu.Unlock()
		close(c.send)
		c.conn.Close()
		h.log.Info("websocket client disconnected", "id", c.id, "total", n)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
