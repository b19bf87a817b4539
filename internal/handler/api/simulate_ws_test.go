package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PriceSim/pkg/config"

	"github.com/gorilla/websocket"
)

type wsReply struct {
	Type string `json:"type"`
	Data *struct {
		SessionID string    `json:"session_id"`
		Series    []float64 `json:"series"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func dialWS(t *testing.T, api *testAPI) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(api.server.Echo())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/simulate/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) wsReply {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func TestSimulateWSPreview(t *testing.T) {
	api := newTestAPI(t, PricingOptions{}, config.WSLimit{})
	conn := dialWS(t, api)

	reply := roundTrip(t, conn, `{"current_price": 1000}`)
	if reply.Type != "simulation" || reply.Data == nil {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(reply.Data.Series) != 13 || reply.Data.Series[0] != 1000 {
		t.Fatalf("unexpected series %v", reply.Data.Series)
	}
	if reply.Data.SessionID != "" {
		t.Fatalf("preview must not issue a session")
	}
	if api.cache.Len() != 0 {
		t.Fatalf("preview must not store anything, cache has %d entries", api.cache.Len())
	}

	reply = roundTrip(t, conn, `{"current_price": 0}`)
	if reply.Type != "error" || !strings.Contains(string(reply.Errors), "ERR_GT") {
		t.Fatalf("expected validation error, got %+v", reply)
	}

	reply = roundTrip(t, conn, `not json`)
	if reply.Type != "error" {
		t.Fatalf("expected error for malformed message, got %+v", reply)
	}

	// the connection survives bad messages
	reply = roundTrip(t, conn, `{}`)
	if reply.Type != "simulation" {
		t.Fatalf("expected simulation after errors, got %+v", reply)
	}
}

func TestSimulateWSThrottles(t *testing.T) {
	api := newTestAPI(t, PricingOptions{}, config.WSLimit{RatePerSecond: 0.001, Burst: 2})
	conn := dialWS(t, api)

	for i := 0; i < 2; i++ {
		if reply := roundTrip(t, conn, `{}`); reply.Type != "simulation" {
			t.Fatalf("message %d: expected simulation, got %+v", i, reply)
		}
	}
	reply := roundTrip(t, conn, `{}`)
	if reply.Type != "error" || !strings.Contains(string(reply.Errors), "ERR_TOO_MANY_REQUESTS") {
		t.Fatalf("expected throttling, got %+v", reply)
	}
}
