package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashendes/store-dashboard/internal/anomaly"
	"github.com/ashendes/store-dashboard/internal/dashboard"
	"github.com/ashendes/store-dashboard/internal/health"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDashboard struct {
	view      models.StoreDashboard
	summary   models.FleetSummary
	snapshots map[string]dashboard.StoreSnapshot
	err       error

	requested []string
}

func (f *fakeDashboard) StoreDashboard(_ context.Context, storeID string) (models.StoreDashboard, error) {
	f.requested = append(f.requested, storeID)
	if f.err != nil {
		return models.StoreDashboard{}, f.err
	}
	return f.view, nil
}

func (f *fakeDashboard) Summary(context.Context) (models.FleetSummary, error) {
	if f.err != nil {
		return models.FleetSummary{}, f.err
	}
	return f.summary, nil
}

func (f *fakeDashboard) Snapshot(_ context.Context, storeID string) (dashboard.StoreSnapshot, error) {
	if f.err != nil {
		return dashboard.StoreSnapshot{}, f.err
	}
	snapshot, ok := f.snapshots[storeID]
	if !ok {
		return dashboard.StoreSnapshot{}, errors.New("unknown store")
	}
	return snapshot, nil
}

func (f *fakeDashboard) FleetSnapshots(context.Context) ([]dashboard.StoreSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]dashboard.StoreSnapshot, 0, len(f.snapshots))
	for _, snapshot := range f.snapshots {
		out = append(out, snapshot)
	}
	return out, nil
}

type fakeCircuit struct {
	status *patterns.CircuitStatus
}

func (f fakeCircuit) CircuitStatus() *patterns.CircuitStatus {
	return f.status
}

func newTestRouter(dash DashboardService, circuit CircuitReporter) *gin.Engine {
	return NewRouter(Dependencies{
		Dashboard: dash,
		Health:    health.NewService(nil),
		Anomalies: anomaly.NewDetector(),
		Circuit:   circuit,
	})
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoot(t *testing.T) {
	w := get(t, newTestRouter(&fakeDashboard{}, nil), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Restaurant Dashboard API","version":"1.0.0"}`, w.Body.String())
}

func TestSummary(t *testing.T) {
	dash := &fakeDashboard{summary: models.FleetSummary{
		Stores:       []any{map[string]any{"id": "s1"}, map[string]any{"id": "s2"}},
		TotalStores:  2,
		TotalOrders:  2,
		TotalRevenue: models.NewMoney(decimal.NewFromInt(10)),
	}}

	w := get(t, newTestRouter(dash, nil), "/api/dashboard/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"stores": [{"id":"s1"},{"id":"s2"}],
		"totalStores": 2,
		"totalOrders": 2,
		"totalRevenue": 10
	}`, w.Body.String())
	assert.Contains(t, w.Body.String(), `"totalRevenue":10.00`)
}

func TestSummary_UpstreamFailureIsGeneric(t *testing.T) {
	dash := &fakeDashboard{err: errors.New("list stores: GET /api/stores returned status 503")}

	w := get(t, newTestRouter(dash, nil), "/api/dashboard/summary")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "503")
}

func TestStoreDashboard(t *testing.T) {
	dash := &fakeDashboard{view: models.StoreDashboard{
		Store:  map[string]any{"id": "s1", "name": "Pho Real"},
		Orders: []any{map[string]any{"id": "o1"}},
	}}

	w := get(t, newTestRouter(dash, nil), "/api/dashboard/store/s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"store":{"id":"s1","name":"Pho Real"},"orders":[{"id":"o1"}]}`, w.Body.String())
}

func TestStoreDashboard_PassesStoreIDThrough(t *testing.T) {
	dash := &fakeDashboard{view: models.StoreDashboard{Store: map[string]any{}, Orders: []any{}}}
	router := newTestRouter(dash, nil)

	for _, path := range []string{"/api/dashboard/store/a%20", "/api/dashboard/store/%20%20"} {
		w := get(t, router, path)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, []string{"a ", "  "}, dash.requested)
}

func TestStoreDashboard_UpstreamFailure(t *testing.T) {
	dash := &fakeDashboard{err: errors.New("fetch store s1: timeout")}

	w := get(t, newTestRouter(dash, nil), "/api/dashboard/store/s1")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())
}

func TestStoreMetrics_NotImplemented(t *testing.T) {
	w := get(t, newTestRouter(&fakeDashboard{}, nil), "/api/metrics/store/s1")
	require.Equal(t, http.StatusNotImplemented, w.Code)
	assert.JSONEq(t, `{"detail":"Not implemented yet"}`, w.Body.String())
}

func TestHealthScore_Placeholder(t *testing.T) {
	w := get(t, newTestRouter(&fakeDashboard{}, nil), "/api/health-score/s1")
	require.Equal(t, http.StatusOK, w.Code)

	var score models.HealthScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, "s1", score.StoreID)
	assert.Equal(t, 75.0, score.Score)
	assert.Equal(t, models.HealthStatusWarning, score.Status)
	for name, value := range score.Factors {
		assert.GreaterOrEqual(t, value, 0.0, name)
		assert.LessOrEqual(t, value, 100.0, name)
	}
	assert.NotNil(t, score.Recommendations)
}

func TestOrdersSummary(t *testing.T) {
	router := newTestRouter(&fakeDashboard{}, nil)

	t.Run("default window", func(t *testing.T) {
		w := get(t, router, "/api/orders/summary?store_id=s1&platform=doordash")
		require.Equal(t, http.StatusOK, w.Code)

		var summary models.OrderSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Zero(t, summary.TotalOrders)
		assert.Zero(t, summary.TotalRevenue)
		assert.Empty(t, summary.Anomalies)
		assert.Equal(t, 24*time.Hour, summary.TimeRange.End.Sub(summary.TimeRange.Start))
	})

	t.Run("custom window", func(t *testing.T) {
		w := get(t, router, "/api/orders/summary?hours=6")
		require.Equal(t, http.StatusOK, w.Code)

		var summary models.OrderSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, 6*time.Hour, summary.TimeRange.End.Sub(summary.TimeRange.Start))
	})

	for _, hours := range []string{"0", "-3", "abc"} {
		t.Run("invalid hours "+hours, func(t *testing.T) {
			w := get(t, router, "/api/orders/summary?hours="+hours)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestDetectAnomalies(t *testing.T) {
	dash := &fakeDashboard{snapshots: map[string]dashboard.StoreSnapshot{
		"failing": {
			StoreID: "failing",
			Metrics: models.StoreMetrics{StoreID: "failing", TotalOrders24h: 10, FailureRate: 50},
		},
		"fine": {
			StoreID: "fine",
			Metrics: models.StoreMetrics{StoreID: "fine", TotalOrders24h: 10, FailureRate: 5},
		},
	}}
	router := newTestRouter(dash, nil)

	decode := func(w *httptest.ResponseRecorder) []models.Anomaly {
		var anomalies []models.Anomaly
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anomalies))
		return anomalies
	}

	w := get(t, router, "/api/anomalies/detect?store_id=failing")
	require.Equal(t, http.StatusOK, w.Code)
	anomalies := decode(w)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyHighFailureRate, anomalies[0].Type)
	assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)
	assert.Equal(t, "failing", anomalies[0].StoreID)
	assert.False(t, anomalies[0].Resolved)

	w = get(t, router, "/api/anomalies/detect?store_id=fine")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = get(t, router, "/api/anomalies/detect")
	require.Equal(t, http.StatusOK, w.Code)
	fleet := decode(w)
	require.Len(t, fleet, 1)
	assert.Equal(t, "failing", fleet[0].StoreID)
}

func TestDetectAnomalies_UpstreamFailureIsEmpty(t *testing.T) {
	router := newTestRouter(&fakeDashboard{err: errors.New("upstream down")}, nil)

	for _, path := range []string{"/api/anomalies/detect", "/api/anomalies/detect?store_id=s1"} {
		w := get(t, router, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "[]", w.Body.String(), path)
	}
}

func TestCircuitStatus(t *testing.T) {
	w := get(t, newTestRouter(&fakeDashboard{}, nil), "/api/upstream/circuit-status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())

	w = get(t, newTestRouter(&fakeDashboard{}, fakeCircuit{}), "/api/upstream/circuit-status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())

	circuit := fakeCircuit{status: &patterns.CircuitStatus{Name: "Upstream", State: "open", Value: 1, Requests: 5, Failures: 5}}
	w = get(t, newTestRouter(&fakeDashboard{}, circuit), "/api/upstream/circuit-status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"enabled": true,
		"upstream": {"name":"Upstream","state":"open","value":1,"requests":5,"total_failures":5}
	}`, w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, newTestRouter(&fakeDashboard{}, nil), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
