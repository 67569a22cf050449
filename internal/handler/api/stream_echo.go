package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"LoadLedger/internal/middleware"
	"LoadLedger/internal/service/metrics"
	xlogger "LoadLedger/pkg/logger"
)

const (
	streamWriteWait    = 10 * time.Second
	streamPingInterval = 25 * time.Second
)

// RunStreamHandler relays run events from the bus to WebSocket clients.
// A client that stops draining its buffer is dropped by the bus, which
// closes the channel and ends the stream.
type RunStreamHandler struct {
	logger   *xlogger.Logger
	bus      *middleware.RunEventBus
	upgrader websocket.Upgrader
}

func NewRunStreamHandler(logger *xlogger.Logger, bus *middleware.RunEventBus) *RunStreamHandler {
	metrics.Register()
	return &RunStreamHandler{
		logger: logger,
		bus:    bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *RunStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/runs/stream", h.Stream)
}

func (h *RunStreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	events := h.bus.Subscribe()
	defer h.bus.Unsubscribe(events)

	// Reads only serve to surface client disconnects and control frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	h.logger.Debug("run stream client connected", xlogger.String("remote", conn.RemoteAddr().String()))
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// bus dropped us or shut down
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
