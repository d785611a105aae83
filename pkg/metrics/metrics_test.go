package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200")); got != 1 {
		t.Errorf("期望 /ping 计数=1，实际=%v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("/metrics 输出应包含 http_requests_total")
	}
}

func TestObserve_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLogin("success")
	m.ObserveRegistration("student", "success")
	m.ObserveVerification("student", "approved")
}

func TestObserveCounters(t *testing.T) {
	m := New()
	m.ObserveLogin("failure")
	m.ObserveLogin("failure")
	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues("failure")); got != 2 {
		t.Errorf("期望登录失败计数=2，实际=%v", got)
	}
}
