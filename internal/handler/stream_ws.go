package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// streamSocket handles GET /api/dashboard/stream/ws
// @Summary Live stream over websocket
// @Description Sends the current stream view, then a new view after every change. Accepts {"action":"ack|pause|resume|refresh"}.
// @Tags stream
// @Success 101
// @Router /api/dashboard/stream/ws [get]
func (h *Handler) streamSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	updates, unsubscribe := h.dashboard.SubscribeStream()
	defer unsubscribe()

	done := make(chan struct{})
	go h.readActions(conn, done)

	h.writeViews(conn, updates, done)
}

// readActions applies control messages until the peer goes away.
func (h *Handler) readActions(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		var msg dto.StreamAction
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Websocket closed", zap.Error(err))
			}
			return
		}

		switch msg.Action {
		case "ack":
			h.dashboard.AcknowledgeStream()
		case "pause":
			h.dashboard.PauseStream()
		case "resume":
			h.dashboard.ResumeStream()
		case "refresh":
			h.dashboard.RefreshStream()
		default:
			h.log.Debug("Ignoring unknown stream action", zap.String("action", msg.Action))
		}
	}
}

// writeViews owns every write to conn.
func (h *Handler) writeViews(conn *websocket.Conn, updates <-chan stream.Snapshot, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	if err := h.writeView(conn); err != nil {
		return
	}

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream stopped")
				conn.WriteMessage(websocket.CloseMessage, msg) //nolint:errcheck
				return
			}
			if err := h.writeView(conn); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) writeView(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	if err := conn.WriteJSON(h.dashboard.Stream()); err != nil {
		h.log.Debug("Websocket write failed", zap.Error(err))
		return err
	}
	return nil
}
