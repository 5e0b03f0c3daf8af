package health

import "github.com/ashendes/store-dashboard/internal/models"

// PlaceholderModel returns fixed factor values until real weights are agreed.
// Only success_rate follows the metrics, and only when there is data behind it.
type PlaceholderModel struct{}

const placeholderScore = 75.0

// Evaluate implements FactorModel
func (PlaceholderModel) Evaluate(metrics models.StoreMetrics, _ []models.Order) (float64, map[string]float64) {
	successRate := 85.0
	if metrics.TotalOrders24h > 0 {
		successRate = metrics.SuccessRate
	}
	return placeholderScore, map[string]float64{
		FactorSuccessRate:          successRate,
		FactorProcessingEfficiency: 80.0,
		FactorRevenuePerformance:   70.0,
		FactorConsistency:          75.0,
	}
}
