package api

import (
	"net/http"
	"sync"
	"time"

	"codecanvas/internal/metrics"
	"codecanvas/internal/project"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is pushed to every connected UI when project state moves.
type Event struct {
	Type              string `json:"type"` // files|selection|status
	FilesRevision     uint64 `json:"filesRevision,omitempty"`
	SelectionRevision uint64 `json:"selectionRevision,omitempty"`
	Generating        bool   `json:"generating,omitempty"`
	Error             string `json:"error,omitempty"`
}

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	clientBuffer = 16
)

// Hub fans events out to websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[chan Event]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger,
		clients: make(map[chan Event]struct{}),
	}
}

// Attach forwards store changes and controller status to clients. The two
// store reactions are keyed separately so the UI refreshes the preview only
// on file changes and the editor only on selection changes.
func (h *Hub) Attach(c *project.Controller) {
	c.Store().Subscribe(func(ch project.Change) {
		if ch.FilesChanged {
			h.Broadcast(Event{Type: "files", FilesRevision: ch.FilesRevision})
		}
		if ch.SelectionChanged {
			h.Broadcast(Event{Type: "selection", SelectionRevision: ch.SelectionRev})
		}
	})
	c.OnStatus(func(st project.Status) {
		h.Broadcast(Event{Type: "status", Generating: st.Generating, Error: st.Error})
	})
}

// Broadcast queues ev for every client. Slow clients drop events; each event
// only tells the UI to refetch state, so a later one supersedes it.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) register() chan Event {
	ch := make(chan Event, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	metrics.EventClients.Inc()
	return ch
}

func (h *Hub) unregister(ch chan Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	metrics.EventClients.Dec()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events until the client goes away.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events := h.register()
	defer h.unregister(events)

	// Reader goroutine: detects close frames and dead peers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// handleEvents is the gin handler for GET /api/events.
func (h *APIHandler) handleEvents(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade required"})
		return
	}
	h.hub.Serve(c)
}
