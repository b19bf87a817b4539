package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newEnvelopeServer(t *testing.T) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.POST("/echo", func(c echo.Context) error {
		var body map[string]interface{}
		if err := c.Bind(&body); err != nil {
			return BadRequestResponse(c, []*AppError{BadRequestError("bad json")})
		}
		return SuccessResponse(c, body)
	})
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("no such thing").WithParam("id", "x"))
	})
	e.GET("/plain", func(c echo.Context) error {
		return c.String(http.StatusBadGateway, "upstream down")
	})
	e.GET("/broken", func(c echo.Context) error {
		return InternalServerErrorResponse(c)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDecodesData(t *testing.T) {
	srv := newEnvelopeServer(t)
	c := NewClient(srv.URL+"/", WithHeader("X-Request-ID", "r1"))

	var out map[string]interface{}
	if err := c.Do(context.Background(), http.MethodPost, "/echo", map[string]int{"n": 3}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["n"] != float64(3) {
		t.Fatalf("unexpected data %v", out)
	}
}

func TestClientErrors(t *testing.T) {
	srv := newEnvelopeServer(t)
	c := NewClient(srv.URL)

	tests := []struct {
		name       string
		path       string
		wantCode   string
		wantStatus int
	}{
		{"app error", "/missing", CodeNotFound, http.StatusNotFound},
		{"string data", "/broken", CodeUnexpected, http.StatusInternalServerError},
		{"no envelope", "/plain", CodeUnexpected, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Do(context.Background(), http.MethodGet, tt.path, nil, nil)
			var ae *AppError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *AppError, got %T %v", err, err)
			}
			if ae.Code != tt.wantCode || ae.Status != tt.wantStatus {
				t.Fatalf("got %s/%d, want %s/%d", ae.Code, ae.Status, tt.wantCode, tt.wantStatus)
			}
			if StatusOf(err) != tt.wantStatus {
				t.Fatalf("StatusOf = %d", StatusOf(err))
			}
		})
	}
}

func TestClientAppErrorIs(t *testing.T) {
	srv := newEnvelopeServer(t)
	err := NewClient(srv.URL).Do(context.Background(), http.MethodGet, "/missing", nil, nil)
	if !errors.Is(err, &AppError{Code: CodeNotFound}) {
		t.Fatalf("expected not found, got %v", err)
	}
	var ae *AppError
	_ = errors.As(err, &ae)
	if ae.Params["id"] != "x" {
		t.Fatalf("expected params to survive decoding, got %v", ae.Params)
	}
	if errors.Is(err, &AppError{Code: CodeInternal}) {
		t.Fatalf("codes must not cross-match")
	}
}

func TestEnvelopeStatusMirrorsHTTP(t *testing.T) {
	srv := newEnvelopeServer(t)
	resp, err := http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Status != resp.StatusCode || env.Status != http.StatusNotFound {
		t.Fatalf("envelope status %d, http %d", env.Status, resp.StatusCode)
	}
}
