package models

import "time"

// PeakHour identifies the busiest hour of day in an order window
type PeakHour struct {
	Hour       int `json:"hour"`
	OrderCount int `json:"order_count"`
}

// StoreMetrics represents performance metrics for a single store
type StoreMetrics struct {
	StoreID                  string         `json:"store_id"`
	TotalOrders24h           int            `json:"total_orders_24h"`
	TotalOrders1h            int            `json:"total_orders_1h"`
	SuccessRate              float64        `json:"success_rate"`
	FailureRate              float64        `json:"failure_rate"`
	AvgProcessingTimeMinutes float64        `json:"avg_processing_time_minutes"`
	TotalRevenue24h          float64        `json:"total_revenue_24h"`
	AvgOrderValue            float64        `json:"avg_order_value"`
	OrdersPerHour            float64        `json:"orders_per_hour"`
	PeakHour                 *PeakHour      `json:"peak_hour,omitempty"`
	ErrorBreakdown           map[string]int `json:"error_breakdown"`
	Timestamp                time.Time      `json:"timestamp"`
}

// HealthStatus constants
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusWarning  = "warning"
	HealthStatusCritical = "critical"
)

// HealthScore represents a store's composite health indicator
type HealthScore struct {
	StoreID         string             `json:"store_id"`
	Score           float64            `json:"score"`
	Status          string             `json:"status"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations"`
	Timestamp       time.Time          `json:"timestamp"`
}

// Anomaly types
const (
	AnomalyHighFailureRate = "high_failure_rate"
	AnomalySlowProcessing  = "slow_processing"
	AnomalyNoOrders        = "no_orders"
)

// Severity constants
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly represents an operational anomaly detected for a store
type Anomaly struct {
	ID          string         `json:"id"`
	StoreID     string         `json:"store_id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	DetectedAt  time.Time      `json:"detected_at"`
	Metrics     map[string]any `json:"metrics"`
	Resolved    bool           `json:"resolved"`
}

// TimeRange bounds an order summary window
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OrderSummary represents order counts over a time window
type OrderSummary struct {
	TotalOrders   int       `json:"total_orders"`
	Completed     int       `json:"completed"`
	Failed        int       `json:"failed"`
	Cancelled     int       `json:"cancelled"`
	TotalRevenue  float64   `json:"total_revenue"`
	AvgOrderValue float64   `json:"avg_order_value"`
	Anomalies     []Anomaly `json:"anomalies"`
	TimeRange     TimeRange `json:"time_range"`
}

// ClampPercent bounds a rate or score to [0,100]
func ClampPercent(v float64) float64 {
	switch {
	case v != v || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
