package anomaly

import (
	"fmt"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/google/uuid"
)

// Default thresholds
const (
	DefaultFailureRateThreshold     = 20.0
	DefaultProcessingTimeMultiplier = 2.0
	DefaultNoOrdersThreshold        = 10 * time.Minute
)

// Detector flags operational anomalies for a store
type Detector struct {
	failureRateThreshold     float64
	processingTimeMultiplier float64
	noOrdersThreshold        time.Duration
	now                      func() time.Time
}

// Option configures a Detector
type Option func(*Detector)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a detector with the default thresholds
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		failureRateThreshold:     DefaultFailureRateThreshold,
		processingTimeMultiplier: DefaultProcessingTimeMultiplier,
		noOrdersThreshold:        DefaultNoOrdersThreshold,
		now:                      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every rule against a store. The failure-rate and slow-processing
// rules need metrics; the no-orders rule needs at least one timestamped order.
func (d *Detector) Detect(storeID string, m *models.StoreMetrics, history []models.Order) []models.Anomaly {
	now := d.now()
	anomalies := []models.Anomaly{}

	if m != nil && m.FailureRate > d.failureRateThreshold {
		anomalies = append(anomalies, d.newAnomaly(storeID, now,
			models.AnomalyHighFailureRate, models.SeverityHigh,
			fmt.Sprintf("Failure rate is %.1f%%, above threshold of %.1f%%", m.FailureRate, d.failureRateThreshold),
			map[string]any{
				"failure_rate": m.FailureRate,
				"threshold":    d.failureRateThreshold,
			}))
	}

	if m != nil {
		if current, ok := latestProcessingMinutes(history); ok && d.CheckProcessingTime(current, m.AvgProcessingTimeMinutes) {
			anomalies = append(anomalies, d.newAnomaly(storeID, now,
				models.AnomalySlowProcessing, models.SeverityMedium,
				fmt.Sprintf("Latest processing time %.1f min exceeds %.0fx the average of %.1f min",
					current, d.processingTimeMultiplier, m.AvgProcessingTimeMinutes),
				map[string]any{
					"current_processing_minutes": current,
					"avg_processing_minutes":     m.AvgProcessingTimeMinutes,
					"multiplier":                 d.processingTimeMultiplier,
				}))
		}
	}

	if last, ok := lastOrderTime(history); ok && d.checkOrderVolume(last, now) {
		idle := now.Sub(last).Round(time.Second)
		anomalies = append(anomalies, d.newAnomaly(storeID, now,
			models.AnomalyNoOrders, models.SeverityLow,
			fmt.Sprintf("No orders received for %s (threshold %s)", idle, d.noOrdersThreshold),
			map[string]any{
				"last_order_at":     last,
				"minutes_since":     idle.Minutes(),
				"threshold_minutes": d.noOrdersThreshold.Minutes(),
			}))
	}

	return anomalies
}

// CheckProcessingTime reports whether current exceeds the multiplier times
// average. A non-positive average never flags.
func (d *Detector) CheckProcessingTime(current, average float64) bool {
	if average <= 0 {
		return false
	}
	return current > average*d.processingTimeMultiplier
}

// CheckOrderVolume reports whether lastOrder is older than the no-orders threshold
func (d *Detector) CheckOrderVolume(lastOrder time.Time) bool {
	return d.checkOrderVolume(lastOrder, d.now())
}

func (d *Detector) checkOrderVolume(lastOrder, now time.Time) bool {
	return now.Sub(lastOrder) > d.noOrdersThreshold
}

func (d *Detector) newAnomaly(storeID string, now time.Time, kind, severity, description string, snapshot map[string]any) models.Anomaly {
	metrics.AnomaliesDetected.WithLabelValues(kind, severity).Inc()
	return models.Anomaly{
		ID:          uuid.New().String(),
		StoreID:     storeID,
		Type:        kind,
		Severity:    severity,
		Description: description,
		DetectedAt:  now,
		Metrics:     snapshot,
	}
}

// latestProcessingMinutes returns the processing time of the most recently
// finished completed order
func latestProcessingMinutes(history []models.Order) (float64, bool) {
	var (
		latest time.Time
		value  float64
		found  bool
	)
	for _, order := range history {
		if !order.IsCompleted() || order.ProcessingTimeSeconds == nil {
			continue
		}
		finished := order.CreatedAt.Time
		if order.CompletedAt != nil && !order.CompletedAt.IsZero() {
			finished = order.CompletedAt.Time
		}
		if !found || finished.After(latest) {
			latest = finished
			value = *order.ProcessingTimeSeconds / 60
			found = true
		}
	}
	return value, found
}

func lastOrderTime(history []models.Order) (time.Time, bool) {
	var last time.Time
	for _, order := range history {
		if order.CreatedAt.After(last) {
			last = order.CreatedAt.Time
		}
	}
	return last, !last.IsZero()
}
