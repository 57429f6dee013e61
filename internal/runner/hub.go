package runner

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// clientQueueSize bounds how many undelivered frames a subscriber may
	// accumulate before it is considered stalled and dropped.
	clientQueueSize = 16
	writeTimeout    = 10 * time.Second
)

var errClientStalled = errors.New("send queue full, dropping client")

type wsMessage struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
}

type projectUpdate struct {
	Type    string   `json:"type"`
	Project *Project `json:"project"`
}

// Hub fans project updates out to websocket clients subscribed by project
// id. Updates for the same project arrive in the order the registry applied
// them; no ordering holds across different projects. Delivery goes through a
// bounded per-client queue drained by a dedicated writer, so a subscriber
// that stops reading is disconnected and only loses its own updates; it can
// never stall a registry mutation.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	out  chan any
	done chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		out:  make(chan any, clientQueueSize),
		done: make(chan struct{}),
	}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*wsClient]struct{})}
}

// Handle upgrades the connection and serves the subscribe/ping protocol
// until the client disconnects.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}
	client := newWSClient(conn)
	go client.writeLoop()
	defer func() {
		h.unsubscribeAll(client)
		client.close()
	}()
	slog.Info("websocket client connected", "remote", conn.RemoteAddr())

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			slog.Info("websocket client disconnected", "remote", conn.RemoteAddr())
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.ProjectID != "" {
				h.subscribe(client, msg.ProjectID)
			}
		case "ping":
			client.send(wsMessage{Type: "pong"})
		}
	}
}

// Publish pushes the project record to every connection subscribed to its
// id. Publish never blocks: frames are enqueued, and a client whose queue is
// full is dropped.
func (h *Hub) Publish(p *Project) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.subs[p.ID]))
	for client := range h.subs[p.ID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	msg := projectUpdate{Type: "projectUpdate", Project: p}
	for _, client := range clients {
		if err := client.send(msg); err != nil {
			slog.Warn("failed to push project update", "project", p.ID, "error", err)
		}
	}
}

// Close disconnects every client; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[*wsClient]struct{})
	for _, clients := range h.subs {
		for client := range clients {
			seen[client] = struct{}{}
		}
	}
	for client := range seen {
		client.close()
	}
	h.subs = make(map[string]map[*wsClient]struct{})
}

func (h *Hub) subscribe(client *wsClient, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[*wsClient]struct{})
	}
	h.subs[projectID][client] = struct{}{}
}

func (h *Hub) unsubscribeAll(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for projectID, clients := range h.subs {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subs, projectID)
		}
	}
}

// send enqueues a frame without blocking. A full queue means the client
// stopped draining; it is closed so its read loop unsubscribes it.
func (c *wsClient) send(v any) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}
	select {
	case c.out <- v:
		return nil
	default:
		c.close()
		return errClientStalled
	}
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case v := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(v); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
