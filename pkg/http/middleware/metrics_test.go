package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {
	m := newHTTPMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.Use(metricsMiddleware(m, nil, 0))
	e.GET("/api/sessions/:id/settings", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, errors.New("upstream"))
	})

	for _, path := range []string{"/api/sessions/a/settings", "/api/sessions/b/settings", "/fail", "/nope"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		route, status string
		want          float64
	}{
		{"/api/sessions/:id/settings", "200", 2},
		{"/fail", "502", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.requests.WithLabelValues(tt.route, http.MethodGet, tt.status)); got != tt.want {
			t.Fatalf("%s %s: expected %v, got %v", tt.route, tt.status, tt.want, got)
		}
	}
	if got := testutil.ToFloat64(m.inFlight.WithLabelValues("/fail", http.MethodGet)); got != 0 {
		t.Fatalf("in-flight gauge must return to zero, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{101: "1xx", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 0: "5xx", 700: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %s, want %s", code, got, want)
		}
	}
}
