package observability_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveTool("get_restaurant_recommendations", "ok")
	observability.ObserveRecommendations(3)
	observability.ObserveSession("start")
	observability.ObserveEnrich("bulk", "enriched")
	observability.ObserveBreaker("places-api", "closed", "open", 2)

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"picky_http_requests_total",
		"picky_tool_calls_total",
		"picky_recommendations_returned",
		"picky_session_events_total",
		"picky_enrichment_total",
		"picky_circuit_breaker_state",
		"picky_circuit_breaker_transitions_total",
	} {
		assert.Contains(t, out, name)
	}
}

func TestMetricsServerRoutes(t *testing.T) {
	srv := observability.MetricsServer(":0", observability.InitRegistry())
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLabelErr(t *testing.T) {
	assert.Equal(t, "none", observability.LabelErr(nil))
	assert.Equal(t, "*errors.errorString", observability.LabelErr(errors.New("x")))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLogger("prod", &buf)
	l.Info().Str("k", "v").Msg("hello")
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
