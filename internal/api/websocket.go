package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/telemetry"
)

// WebSocket message types
const (
	MsgTypeTelemetry = "telemetry"
	MsgTypePing      = "ping"
	MsgTypePong      = "pong"
)

const writeWait = 10 * time.Second

// WSMessage is the envelope for every message on the telemetry socket.
type WSMessage struct {
	Type      string                  `json:"type"`
	Online    bool                    `json:"online,omitempty"`
	Telemetry *models.ServerTelemetry `json:"telemetry,omitempty"`
	Timestamp int64                   `json:"timestamp"`
}

// WebSocketHandler pushes telemetry snapshots to dashboard clients so
// they do not each have to poll the overview endpoint.
type WebSocketHandler struct {
	poller   *telemetry.Poller
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a telemetry push handler.
func NewWebSocketHandler(poller *telemetry.Poller) *WebSocketHandler {
	return &WebSocketHandler{
		poller: poller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The dashboard may be served from a dev server origin.
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
	}
}

// HandleTelemetrySocket upgrades the connection and forwards every
// poll snapshot until the client goes away.
func (wsh *WebSocketHandler) HandleTelemetrySocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	snaps, unsubscribe := wsh.poller.Subscribe()
	defer unsubscribe()

	// Replay the cached snapshot so a fresh client does not wait a
	// full poll interval for its first paint.
	if snap, ok := wsh.poller.Latest(); ok {
		if err := writeSnapshot(ws, snap); err != nil {
			return nil
		}
	}

	// The read pump exists only to notice the close frame and hand
	// pings to the write loop. All writes go through the select loop
	// below: gorilla connections allow a single concurrent writer.
	closed := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(closed)
		for {
			var msg WSMessage
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == MsgTypePing {
				select {
				case pings <- struct{}{}:
				default: // a pong is already queued
				}
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-pings:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}); err != nil {
				return nil
			}
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			if err := writeSnapshot(ws, snap); err != nil {
				return nil
			}
		}
	}
}

func writeSnapshot(ws *websocket.Conn, snap telemetry.Snapshot) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(WSMessage{
		Type:      MsgTypeTelemetry,
		Online:    snap.Online,
		Telemetry: snap.Telemetry,
		Timestamp: snap.FetchedAt.UnixMilli(),
	})
}
