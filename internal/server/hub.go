package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	// The page is served by this process; the embedded viewer is cross-origin anyway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// navigateMessage is what open viewer pages receive.
type navigateMessage struct {
	URL string `json:"url"`
}

// Hub is the web viewer surface. It implements viewer.Viewer by pushing
// each navigation to every connected page over a WebSocket.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	current string
}

// NewHub creates a hub whose pages start on initialURL.
func NewHub(initialURL string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		current: initialURL,
	}
}

// Navigate records url as the current target and sends it to all pages.
// Clients that fail the write are dropped.
func (h *Hub) Navigate(url string) {
	data, _ := json.Marshal(navigateMessage{URL: url})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = url
	for c := range h.clients {
		if err := write(c, data); err != nil {
			h.logger.Debug("dropping viewer client", slog.Any("error", err))
			c.Close()
			delete(h.clients, c)
		}
	}
}

// Current returns the URL pages should be showing.
func (h *Hub) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and sends the current target right away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	data, _ := json.Marshal(navigateMessage{URL: h.current})
	if err := write(conn, data); err != nil {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readPump(conn)
}

// readPump discards client messages and unregisters the client on close.
func (h *Hub) readPump(c *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

func write(c *websocket.Conn, data []byte) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, data)
}
