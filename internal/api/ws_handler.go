package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"candleboard/internal/chart"
	"candleboard/internal/domain/series"
	"candleboard/internal/metrics"
	"candleboard/internal/player"
	"candleboard/pkg/logger"
)

// WSHandler streams animation frames over a WebSocket. Each connection
// owns its own player, so animation position is per client and resets
// when the connection closes.
type WSHandler struct {
	table    series.Table
	interval time.Duration
	log      *logger.Logger

	upgrader websocket.Upgrader
}

// NewWSHandler creates the WebSocket chart handler.
func NewWSHandler(table series.Table, interval time.Duration, log *logger.Logger) *WSHandler {
	return &WSHandler{
		table:    table,
		interval: interval,
		log:      log.With("handler", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard page may be served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsCommand is a client control message.
type wsCommand struct {
	Action string `json:"action"` // start|pause|stop|step|seek
	Index  int    `json:"index,omitempty"`
}

// wsMessage is a server push message.
type wsMessage struct {
	Type   string       `json:"type"` // frame|state|error
	Frame  *chart.Frame `json:"frame,omitempty"`
	State  string       `json:"state,omitempty"`
	Cursor int          `json:"cursor,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// HandleChart upgrades the connection and serves the animation until the
// client disconnects.
func (h *WSHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Frames come from the player tick goroutine while commands arrive
	// on the read loop, so all writes funnel through one outbound
	// channel drained by a single writer.
	outbound := make(chan wsMessage, 32)

	p := player.New(h.table, h.interval, func(frame *chart.Frame) {
		select {
		case outbound <- wsMessage{Type: "frame", Frame: frame}:
		default:
			// Slow client: drop the frame rather than stall the tick.
		}
	})
	defer p.Stop()

	go h.writeLoop(ctx, conn, outbound)

	// Send the initial frame so the client can render before playing.
	if frame, err := p.Current(); err == nil {
		outbound <- wsMessage{Type: "frame", Frame: frame}
	}

	h.readLoop(ctx, conn, p, outbound)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, p *player.Player, outbound chan<- wsMessage) {
	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("WebSocket closed", "error", err)
			}
			return
		}

		switch cmd.Action {
		case "start":
			p.Start(ctx)
		case "pause":
			p.Pause()
		case "stop":
			p.Stop()
		case "step":
			frame, err := p.Step()
			if err != nil {
				h.send(outbound, wsMessage{Type: "error", Error: err.Error()})
				continue
			}
			h.send(outbound, wsMessage{Type: "frame", Frame: frame})
		case "seek":
			frame, err := p.Seek(cmd.Index)
			if err != nil {
				h.send(outbound, wsMessage{Type: "error", Error: err.Error()})
				continue
			}
			h.send(outbound, wsMessage{Type: "frame", Frame: frame})
		default:
			h.send(outbound, wsMessage{Type: "error", Error: "unknown action: " + cmd.Action})
			continue
		}

		h.send(outbound, wsMessage{
			Type:   "state",
			State:  string(p.State()),
			Cursor: p.Cursor(),
		})
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan wsMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbound:
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debugw("WebSocket write failed", "error", err)
				return
			}
		}
	}
}

func (h *WSHandler) send(outbound chan<- wsMessage, msg wsMessage) {
	select {
	case outbound <- msg:
	default:
	}
}
