// Package health scores the operational well-being of a store.
//
// Factor values come from a FactorModel. The service owns everything around
// the model: clamping, tiering and recommendations.
package health

import (
	"time"

	"github.com/ashendes/store-dashboard/internal/models"
)

// Factor names understood by the recommendation rules
const (
	FactorSuccessRate          = "success_rate"
	FactorProcessingEfficiency = "processing_efficiency"
	FactorRevenuePerformance   = "revenue_performance"
	FactorConsistency          = "consistency"
)

// Tier thresholds
const (
	HealthyThreshold = 80.0
	WarningThreshold = 60.0
)

// Recommendation rules
const (
	successRateFloor          = 80.0
	processingEfficiencyFloor = 70.0

	RecommendFailureInvestigation = "Investigate high failure rate - check store availability"
	RecommendOperationsReview     = "Processing times are slow - review kitchen operations"
)

// FactorModel turns metrics and order history into a composite score and its
// contributing factors
type FactorModel interface {
	Evaluate(metrics models.StoreMetrics, history []models.Order) (score float64, factors map[string]float64)
}

// Service calculates health scores
type Service struct {
	model FactorModel
	now   func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source stamped on scores
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a health service. A nil model selects PlaceholderModel.
func NewService(model FactorModel, opts ...Option) *Service {
	if model == nil {
		model = PlaceholderModel{}
	}
	s := &Service{model: model, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate scores a store
func (s *Service) Calculate(storeID string, metrics models.StoreMetrics, history []models.Order) models.HealthScore {
	score, raw := s.model.Evaluate(metrics, history)

	factors := make(map[string]float64, len(raw))
	for name, value := range raw {
		factors[name] = models.ClampPercent(value)
	}
	score = models.ClampPercent(score)

	return models.HealthScore{
		StoreID:         storeID,
		Score:           score,
		Status:          Tier(score),
		Factors:         factors,
		Recommendations: Recommendations(factors),
		Timestamp:       s.now(),
	}
}

// Tier maps a score to healthy, warning or critical
func Tier(score float64) string {
	switch {
	case score >= HealthyThreshold:
		return models.HealthStatusHealthy
	case score >= WarningThreshold:
		return models.HealthStatusWarning
	default:
		return models.HealthStatusCritical
	}
}

// Recommendations lists actionable notes for factors below their floor.
// Absent factors never trigger a note.
func Recommendations(factors map[string]float64) []string {
	recommendations := []string{}
	if v, ok := factors[FactorSuccessRate]; ok && v < successRateFloor {
		recommendations = append(recommendations, RecommendFailureInvestigation)
	}
	if v, ok := factors[FactorProcessingEfficiency]; ok && v < processingEfficiencyFloor {
		recommendations = append(recommendations, RecommendOperationsReview)
	}
	return recommendations
}
