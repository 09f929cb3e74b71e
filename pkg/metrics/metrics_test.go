package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("strategy")

	m.RecordHTTPRequest(http.MethodPost, "/api/v1/strategy/evaluate", 200, 0.01)
	m.RecordEvaluation("ok", 0.02)
	m.RecordEvaluation("computation", 0.01)
	m.RecordMarketData("spot", nil)
	m.RecordMarketData("spot", errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/strategy/evaluate", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("computation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MarketDataRequestsTotal.WithLabelValues("spot", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MarketDataRequestsTotal.WithLabelValues("spot", "ok")))
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a, b := New("strategy"), New("strategy")
	a.OracleCallsTotal.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OracleCallsTotal))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("strategy")
	m.UnclassifiedTotal.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "options_strategy_unclassified_total 1")
}
