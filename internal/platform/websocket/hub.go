package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
)

const (
	// DefaultSendBuffer is the number of messages queued per client before it is dropped.
	DefaultSendBuffer = 16

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// client is one subscriber connection with its own outbound queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks websocket subscribers and broadcasts resolved analysis outcomes to them.
// A client whose queue is full is disconnected rather than slowing the broadcaster.
type Hub struct {
	mu         sync.Mutex
	clients    map[*client]struct{}
	closed     bool
	sendBuffer int
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewHub creates an empty Hub. A sendBuffer <= 0 uses DefaultSendBuffer.
func NewHub(sendBuffer int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		sendBuffer: sendBuffer,
		logger:     logger.With("component", "websocket_hub"),
	}
}

var _ events.OutcomePublisher = (*Hub)(nil)

// Register adds an upgraded connection and starts its read and write pumps.
// The connection is closed when the peer goes away or the hub closes.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", "remote_addr", conn.RemoteAddr().String(), "clients", count)

	h.wg.Add(2)
	go h.writePump(c)
	go h.readPump(c)
}

// PublishOutcome implements events.OutcomePublisher.
func (h *Hub) PublishOutcome(ctx context.Context, event events.AnalysisResolved) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	msg, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to encode outcome event", "error", err, "diary_id", event.DiaryID)
		return
	}
	h.Broadcast(msg)
}

// Broadcast queues msg for every client. Clients with a full queue are dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client",
				"remote_addr", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			c.close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their pumps to exit.
// Later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client disconnected", "clients", count)
}

// readPump discards inbound messages; it exists to notice disconnects and pongs.
func (h *Hub) readPump(c *client) {
	defer h.wg.Done()
	defer h.unregister(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		h.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
