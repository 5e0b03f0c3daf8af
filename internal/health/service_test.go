package health

import (
	"testing"
	"time"

	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModel struct {
	score   float64
	factors map[string]float64
}

func (m fixedModel) Evaluate(models.StoreMetrics, []models.Order) (float64, map[string]float64) {
	return m.score, m.factors
}

func TestTier(t *testing.T) {
	cases := map[float64]string{
		100:   models.HealthStatusHealthy,
		80:    models.HealthStatusHealthy,
		79.99: models.HealthStatusWarning,
		60:    models.HealthStatusWarning,
		59.9:  models.HealthStatusCritical,
		0:     models.HealthStatusCritical,
	}
	for score, want := range cases {
		assert.Equal(t, want, Tier(score), "score %v", score)
	}
}

func TestRecommendations(t *testing.T) {
	assert.Empty(t, Recommendations(map[string]float64{}))
	assert.Empty(t, Recommendations(map[string]float64{
		FactorSuccessRate:          80,
		FactorProcessingEfficiency: 70,
	}))
	assert.Equal(t, []string{RecommendFailureInvestigation, RecommendOperationsReview},
		Recommendations(map[string]float64{
			FactorSuccessRate:          79,
			FactorProcessingEfficiency: 69,
		}))
	assert.Equal(t, []string{RecommendOperationsReview},
		Recommendations(map[string]float64{FactorProcessingEfficiency: 10}))
}

func TestCalculate_ClampsScoreAndFactors(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc := NewService(fixedModel{
		score: 140,
		factors: map[string]float64{
			FactorSuccessRate:          -12,
			FactorProcessingEfficiency: 250,
		},
	}, WithClock(func() time.Time { return now }))

	score := svc.Calculate("s1", models.StoreMetrics{}, nil)

	assert.Equal(t, "s1", score.StoreID)
	assert.Equal(t, 100.0, score.Score)
	assert.Equal(t, models.HealthStatusHealthy, score.Status)
	assert.Equal(t, 0.0, score.Factors[FactorSuccessRate])
	assert.Equal(t, 100.0, score.Factors[FactorProcessingEfficiency])
	assert.Equal(t, []string{RecommendFailureInvestigation}, score.Recommendations)
	assert.Equal(t, now, score.Timestamp)
}

func TestCalculate_PlaceholderModel(t *testing.T) {
	svc := NewService(nil)

	score := svc.Calculate("s1", models.StoreMetrics{StoreID: "s1"}, nil)
	require.Equal(t, 75.0, score.Score)
	require.Equal(t, models.HealthStatusWarning, score.Status)
	require.Equal(t, 85.0, score.Factors[FactorSuccessRate])
	require.Len(t, score.Factors, 4)
	require.Empty(t, score.Recommendations)

	withData := svc.Calculate("s1", models.StoreMetrics{StoreID: "s1", TotalOrders24h: 10, SuccessRate: 60}, nil)
	require.Equal(t, 60.0, withData.Factors[FactorSuccessRate])
	require.Equal(t, []string{RecommendFailureInvestigation}, withData.Recommendations)
}
