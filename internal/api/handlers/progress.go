package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// ProgressHandler streams batch progress events over a websocket
type ProgressHandler struct {
	tracker  *analysis.ProgressTracker
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(tracker *analysis.ProgressTracker, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		tracker: tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 내부망/로컬 대시보드 전용
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

const progressWriteTimeout = 10 * time.Second

// Stream upgrades to a websocket and forwards progress events until the
// client disconnects
// GET /api/analysis/progress
func (h *ProgressHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := h.tracker.Subscribe()
	defer unsubscribe()

	h.logger.Info("Progress stream opened")

	// 클라이언트 종료 감지용 read pump
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info("Progress stream closed by client")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(progressWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.WithError(err).Debug("Progress stream write failed")
				return
			}
		}
	}
}
