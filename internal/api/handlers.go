package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ashendes/store-dashboard/internal/dashboard"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// storeDashboard returns a store together with its orders
func (h *Handler) storeDashboard(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}

	view, err := h.dashboard.StoreDashboard(c.Request.Context(), storeID)
	if err != nil {
		respondInternalError(c, err, log.Fields{"store_id": storeID})
		return
	}
	c.JSON(http.StatusOK, view)
}

// summary returns fleet-wide totals
func (h *Handler) summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, nil)
		return
	}

	log.WithFields(log.Fields{
		"stores":  summary.TotalStores,
		"orders":  summary.TotalOrders,
		"revenue": summary.TotalRevenue.String(),
	}).Info("Fleet summary built")

	c.JSON(http.StatusOK, summary)
}

// storeMetrics is not served yet
func (h *Handler) storeMetrics(c *gin.Context) {
	respondNotImplemented(c)
}

// healthScore returns the store's health score from the configured factor model
func (h *Handler) healthScore(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	score := h.health.Calculate(storeID, models.StoreMetrics{StoreID: storeID}, nil)
	c.JSON(http.StatusOK, score)
}

type orderSummaryQuery struct {
	StoreID  string `form:"store_id"`
	Platform string `form:"platform"`
	Hours    int    `form:"hours,default=24" binding:"gte=1"`
}

// ordersSummary returns an empty summary for the requested window
func (h *Handler) ordersSummary(c *gin.Context) {
	var query orderSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err)
		return
	}

	end := time.Now()
	c.JSON(http.StatusOK, models.OrderSummary{
		Anomalies: []models.Anomaly{},
		TimeRange: models.TimeRange{
			Start: end.Add(-time.Duration(query.Hours) * time.Hour),
			End:   end,
		},
	})
}

// detectAnomalies checks one store, or every store when store_id is absent.
// Upstream failures produce an empty list.
func (h *Handler) detectAnomalies(c *gin.Context) {
	ctx := c.Request.Context()
	storeID := strings.TrimSpace(c.Query("store_id"))

	var snapshots []dashboard.StoreSnapshot
	if storeID != "" {
		snapshot, err := h.dashboard.Snapshot(ctx, storeID)
		if err != nil {
			log.WithField("store_id", storeID).WithError(err).Warn("Anomaly detection skipped")
		} else {
			snapshots = append(snapshots, snapshot)
		}
	} else {
		fleet, err := h.dashboard.FleetSnapshots(ctx)
		if err != nil {
			log.WithError(err).Warn("Fleet anomaly detection skipped")
		}
		snapshots = fleet
	}

	anomalies := []models.Anomaly{}
	for _, snapshot := range snapshots {
		m := snapshot.Metrics
		anomalies = append(anomalies, h.anomalies.Detect(snapshot.StoreID, &m, snapshot.Orders)...)
	}
	c.JSON(http.StatusOK, anomalies)
}

// circuitStatus reports the upstream circuit breaker
func (h *Handler) circuitStatus(c *gin.Context) {
	if h.circuit == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	status := h.circuit.CircuitStatus()
	if status == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":  true,
		"upstream": status,
	})
}

func storeIDParam(c *gin.Context) (string, bool) {
	storeID := c.Param("store_id")
	if storeID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "store_id is required"})
		return "", false
	}
	return storeID, true
}
