package api

import (
	"context"
	"net/http"

	"github.com/ashendes/store-dashboard/internal/dashboard"
	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// DashboardService builds per-store and fleet views
type DashboardService interface {
	StoreDashboard(ctx context.Context, storeID string) (models.StoreDashboard, error)
	Summary(ctx context.Context) (models.FleetSummary, error)
	Snapshot(ctx context.Context, storeID string) (dashboard.StoreSnapshot, error)
	FleetSnapshots(ctx context.Context) ([]dashboard.StoreSnapshot, error)
}

// HealthScorer scores a store's health
type HealthScorer interface {
	Calculate(storeID string, metrics models.StoreMetrics, history []models.Order) models.HealthScore
}

// AnomalyDetector flags store anomalies
type AnomalyDetector interface {
	Detect(storeID string, metrics *models.StoreMetrics, history []models.Order) []models.Anomaly
}

// CircuitReporter exposes the upstream circuit breaker state
type CircuitReporter interface {
	CircuitStatus() *patterns.CircuitStatus
}

// Dependencies are the collaborators the HTTP layer delegates to
type Dependencies struct {
	Dashboard      DashboardService
	Health         HealthScorer
	Anomalies      AnomalyDetector
	Circuit        CircuitReporter
	OrderStreamURL string
	ServiceName    string
}

// Handler serves the dashboard HTTP API
type Handler struct {
	dashboard DashboardService
	health    HealthScorer
	anomalies AnomalyDetector
	circuit   CircuitReporter
	stream    *OrderStream
}

// NewHandler creates a handler from its dependencies
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		dashboard: deps.Dashboard,
		health:    deps.Health,
		anomalies: deps.Anomalies,
		circuit:   deps.Circuit,
		stream:    NewOrderStream(deps.OrderStreamURL, deps.ServiceName),
	}
}

// NewRouter builds the gin engine with middleware and every route registered
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.ServiceName == "" {
		deps.ServiceName = "dashboard-service"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(metrics.PrometheusMiddleware(deps.ServiceName))

	NewHandler(deps).Register(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// Register attaches every route to r
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.root)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/api/dashboard/store/:store_id", h.storeDashboard)
	r.GET("/api/dashboard/summary", h.summary)
	r.GET("/api/metrics/store/:store_id", h.storeMetrics)
	r.GET("/api/health-score/:store_id", h.healthScore)
	r.GET("/api/orders/summary", h.ordersSummary)
	r.GET("/api/anomalies/detect", h.detectAnomalies)
	r.GET("/api/upstream/circuit-status", h.circuitStatus)

	r.GET("/ws/orders", h.stream.Handle)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Restaurant Dashboard API",
		"version": Version,
	})
}
