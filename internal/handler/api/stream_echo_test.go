package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"LoadLedger/internal/domain/models"
	"LoadLedger/internal/middleware"
)

func waitForSubscribers(t *testing.T, bus *middleware.RunEventBus, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if bus.Subscribers() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscribers = %d, want %d", bus.Subscribers(), want)
}

func TestRunStreamDeliversEvents(t *testing.T) {
	lgr := testLogger(t)
	bus := middleware.NewRunEventBus(lgr)
	defer bus.Close()

	e := echo.New()
	NewRunStreamHandler(lgr, bus).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/runs/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	waitForSubscribers(t, bus, 1)
	published := models.RunEvent{
		RunID:   "run-1",
		Stage:   models.StageIngest,
		Level:   "info",
		Message: "run started",
		At:      time.Now().UTC(),
	}
	bus.Publish(published)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.RunEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.RunID != "run-1" || got.Stage != models.StageIngest || got.Message != "run started" {
		t.Errorf("event = %+v", got)
	}
}

func TestRunStreamUnsubscribesOnDisconnect(t *testing.T) {
	lgr := testLogger(t)
	bus := middleware.NewRunEventBus(lgr)
	defer bus.Close()

	e := echo.New()
	NewRunStreamHandler(lgr, bus).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/runs/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	waitForSubscribers(t, bus, 1)

	conn.Close()
	waitForSubscribers(t, bus, 0)
}
