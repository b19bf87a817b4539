package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	applogger "PriceSim/pkg/logger"
)

func TestRecover(t *testing.T) {
	e := echo.New()
	e.Use(Recover(applogger.NewNop()))
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/partial", func(c echo.Context) error {
		_ = c.String(http.StatusOK, "half")
		panic("late")
	})

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var env struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || env.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/partial", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "half" {
		t.Fatalf("committed response must be left alone, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRecoverReraisesAbort(t *testing.T) {
	e := echo.New()
	e.Use(Recover(applogger.NewNop()))
	e.GET("/abort", func(c echo.Context) error { panic(http.ErrAbortHandler) })

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", r)
		}
	}()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
}
