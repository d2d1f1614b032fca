package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for all WebSocket traffic.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans simulation events out to connected UI clients. Sends are
// best-effort: a client that cannot keep up is dropped rather than ever
// stalling the simulation.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; run it with `go hub.Run()`.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub's event loop. Blocks.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			slog.Debug("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer. Cut it loose.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// NotifyCityChanged implements caravan.Notifier: a hint that the city's
// displayed inventory may be stale. Never blocks the caller.
func (h *Hub) NotifyCityChanged(cityID int64) {
	data, err := json.Marshal(Message{
		Type:    "city_changed",
		Payload: map[string]int64{"city_id": cityID},
	})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Debug("notification dropped, broadcast buffer full", "city_id", cityID)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; the socket is one-way. Its job is to
// notice disconnects and unregister.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
