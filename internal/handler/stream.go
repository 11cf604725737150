package handler

import (
	"net/http"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 45 * time.Second
)

// Stream godoc
// @Summary      Live market snapshots over WebSocket
// @Description  Sends the current snapshot on connect, then one message per market tick.
// @Tags         market
// @Success      101
// @Failure      503  {object}  map[string]string
// @Router       /api/market/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	if h.stream == nil || h.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market stream unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snapshots, unsubscribe := h.stream.Subscribe()
	defer unsubscribe()

	// The reader only services control frames and notices the client leaving.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeSnapshot(conn, h.desk.Current(h.now())); err != nil {
		return
	}

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "market stopped"),
					time.Now().Add(streamWriteWait))
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				h.log.Debug().Err(err).Msg("stream client gone")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap market.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(snap)
}
