package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newCORSEcho() *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins:  []string{"https://app.example"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
		MaxAge:        600,
	}))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestCORS(t *testing.T) {
	e := newCORSEcho()
	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", http.MethodGet, "https://app.example", "https://app.example", http.StatusOK},
		{"foreign origin", http.MethodGet, "https://evil.example", "", http.StatusOK},
		{"no origin", http.MethodGet, "", "", http.StatusOK},
		{"preflight", http.MethodOptions, "https://app.example", "https://app.example", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tt.origin)
			}
			rr := httptest.NewRecorder()
			e.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if got := rr.Header().Get(echo.HeaderAccessControlAllowOrigin); got != tt.wantOrigin {
				t.Fatalf("expected allow-origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" && rr.Header().Get(echo.HeaderAccessControlExposeHeaders) != echo.HeaderContentDisposition {
				t.Fatalf("expected Content-Disposition to be exposed")
			}
		})
	}
}
