package dashboard

import (
	"encoding/json"
	"time"

	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	metricsWindow = 24 * time.Hour
	recentWindow  = time.Hour
)

// DecodeOrders converts raw upstream orders into typed orders. Malformed
// fields are zeroed; only entries that are not JSON objects are dropped.
func DecodeOrders(raw []any) []models.Order {
	orders := make([]models.Order, 0, len(raw))
	for i, item := range raw {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var order models.Order
		if err := json.Unmarshal(data, &order); err != nil {
			log.WithField("index", i).WithError(err).Debug("Dropping undecodable order")
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

// ComputeStoreMetrics derives StoreMetrics from the orders created in the 24
// hours before now. Orders without a creation time are ignored.
func ComputeStoreMetrics(storeID string, orders []models.Order, now time.Time) models.StoreMetrics {
	m := models.StoreMetrics{
		StoreID:        storeID,
		ErrorBreakdown: map[string]int{},
		Timestamp:      now,
	}

	var (
		completed, failed int
		processingSeconds float64
		revenue           = decimal.Zero
		byHour            = map[int]int{}
	)

	for _, order := range orders {
		created := order.CreatedAt.Time
		if created.IsZero() || created.After(now) || now.Sub(created) > metricsWindow {
			continue
		}

		m.TotalOrders24h++
		if now.Sub(created) <= recentWindow {
			m.TotalOrders1h++
		}
		byHour[created.UTC().Hour()]++

		switch order.Status {
		case models.OrderStatusCompleted:
			completed++
			revenue = revenue.Add(decimal.NewFromFloat(order.TotalAmount.Float64()))
			if order.ProcessingTimeSeconds != nil {
				processingSeconds += *order.ProcessingTimeSeconds
			}
		case models.OrderStatusFailed:
			failed++
		}

		if order.HasError || order.ErrorType != "" {
			errorType := order.ErrorType
			if errorType == "" {
				errorType = "unknown"
			}
			m.ErrorBreakdown[errorType]++
		}
	}

	if m.TotalOrders24h == 0 {
		return m
	}

	total := float64(m.TotalOrders24h)
	m.SuccessRate = models.ClampPercent(round2(float64(completed) / total * 100))
	m.FailureRate = models.ClampPercent(round2(float64(failed) / total * 100))
	m.TotalRevenue24h = revenue.Round(2).InexactFloat64()
	m.OrdersPerHour = round2(total / metricsWindow.Hours())

	if completed > 0 {
		m.AvgProcessingTimeMinutes = round2(processingSeconds / float64(completed) / 60)
		m.AvgOrderValue = revenue.Div(decimal.NewFromInt(int64(completed))).Round(2).InexactFloat64()
	}

	m.PeakHour = peakHour(byHour)
	return m
}

// peakHour picks the hour with most orders, the earliest hour winning ties
func peakHour(byHour map[int]int) *models.PeakHour {
	var peak *models.PeakHour
	for hour := 0; hour < 24; hour++ {
		count := byHour[hour]
		if count == 0 {
			continue
		}
		if peak == nil || count > peak.OrderCount {
			peak = &models.PeakHour{Hour: hour, OrderCount: count}
		}
	}
	return peak
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
