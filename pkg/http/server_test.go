package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name     string
		check    HealthCheck
		wantCode int
		wantText string
	}{
		{"healthy", func(context.Context) error { return nil }, http.StatusOK, "ok"},
		{"failing", func(context.Context) error { return errors.New("redis down") }, http.StatusServiceUnavailable, "redis down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(nil, nil, WithMetricsPath(""), WithHealthCheck("cache", tt.check))
			rr := httptest.NewRecorder()
			s.Echo().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var env struct {
				Data map[string]string `json:"data"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Data["cache"] != tt.wantText {
				t.Fatalf("unexpected check status %v", env.Data)
			}
		})
	}
}

func TestServerStartStop(t *testing.T) {
	s := NewServer(nil, []Handler{pingHandler{}, nil}, WithHost("127.0.0.1"), WithPort(0), WithMetricsPath(""))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop(context.Background())

	var out string
	c := NewClient(fmt.Sprintf("http://%s", s.Addr()))
	if err := c.Do(context.Background(), http.MethodGet, "/api/ping", nil, &out); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if out != "pong" {
		t.Fatalf("unexpected body %q", out)
	}

	port := s.Addr().(*net.TCPAddr).Port
	busy := NewServer(nil, nil, WithHost("127.0.0.1"), WithPort(port), WithMetricsPath(""))
	if err := busy.Start(); err == nil {
		_ = busy.Stop(context.Background())
		t.Fatalf("expected bind error on a used port")
	}
}
