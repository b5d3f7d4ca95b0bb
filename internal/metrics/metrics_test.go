package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/api/v1/lost-items/{id}", 200, 10*time.Millisecond)
	c.RecordRequest("GET", "/api/v1/lost-items/{id}", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "", 404, time.Millisecond)

	body := scrape(t, reg)
	assert.Contains(t, body, `najdeno_http_requests_total{method="GET",route="/api/v1/lost-items/{id}",status="200"} 2`)
	assert.Contains(t, body, `najdeno_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `najdeno_http_request_duration_seconds_count{method="GET",route="/api/v1/lost-items/{id}"} 2`)
}

func TestDomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignin("ok")
	c.RecordSignin("invalid")
	c.RecordSignin("invalid")
	c.RecordModeration("lost", "active")
	c.RecordItemCreated("found")

	body := scrape(t, reg)
	assert.Contains(t, body, `najdeno_signin_total{result="invalid"} 2`)
	assert.Contains(t, body, `najdeno_signin_total{result="ok"} 1`)
	assert.Contains(t, body, `najdeno_moderation_total{kind="lost",status="active"} 1`)
	assert.Contains(t, body, `najdeno_items_created_total{kind="found"} 1`)
}

func TestNewCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}
