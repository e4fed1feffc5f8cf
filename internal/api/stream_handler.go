package api

import (
	"log/slog"
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
)

// StreamRegistrar takes ownership of an upgraded connection.
// *websocket.Hub implements it.
type StreamRegistrar interface {
	Register(conn *ws.Conn)
}

// StreamHandler upgrades requests to websocket connections that receive
// every resolved analysis outcome.
type StreamHandler struct {
	registrar StreamRegistrar
	upgrader  ws.Upgrader
	logger    *slog.Logger
}

// NewStreamHandler creates a StreamHandler. Cross-origin connections are
// accepted since the feed carries no diary text.
func NewStreamHandler(registrar StreamRegistrar, logger *slog.Logger) *StreamHandler {
	if registrar == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registrar cannot be nil for StreamHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{
		registrar: registrar,
		upgrader: ws.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "stream_handler")),
	}
}

// Stream handles GET /api/analysis/stream requests
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	log.Debug("analysis stream subscriber connected", slog.String("remote_addr", r.RemoteAddr))
	h.registrar.Register(conn)
}

// Health handles GET /health requests
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
