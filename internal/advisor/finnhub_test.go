package advisor

import (
	"testing"

	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func trend(strongBuy, buy, hold, sell, strongSell int) dto.FinnhubRecommendationResponse {
	return dto.FinnhubRecommendationResponse{
		StrongBuy:  strongBuy,
		Buy:        buy,
		Hold:       hold,
		Sell:       sell,
		StrongSell: strongSell,
	}
}

func TestFinnhubAnalyze(t *testing.T) {
	src := &finnhubSource{logger: logger.NewNop()}

	tests := []struct {
		name           string
		currentPrice   float64
		latest         dto.FinnhubRecommendationResponse
		targetMean     float64
		wantType       string
		wantConfidence float64
	}{
		{
			name:         "heavy buy consensus with big upside",
			currentPrice: 100,
			// 80% buy (+2), upside 25% (+2), score 4
			latest:         trend(4, 4, 1, 1, 0),
			targetMean:     125,
			wantType:       model.RecommendationStrongBuy,
			wantConfidence: 0.9,
		},
		{
			name:         "moderate buy consensus",
			currentPrice: 100,
			// 50% buy (+1), upside 10% (+1), score 2
			latest:         trend(2, 3, 4, 1, 0),
			targetMean:     110,
			wantType:       model.RecommendationBuy,
			wantConfidence: 0.75,
		},
		{
			name:         "mixed ratings no target",
			currentPrice: 100,
			// 40% buy, 20% sell, score 0
			latest:         trend(1, 1, 2, 1, 0),
			wantType:       model.RecommendationHold,
			wantConfidence: 0.5,
		},
		{
			name:         "heavy sell consensus",
			currentPrice: 100,
			// 60% sell (-2), score -2
			latest:         trend(0, 1, 1, 2, 1),
			wantType:       model.RecommendationSell,
			wantConfidence: 0.6,
		},
		{
			name:         "sell consensus with deep downside",
			currentPrice: 100,
			// 60% sell (-2), downside -20% (-1), score -3
			latest:         trend(0, 1, 1, 2, 1),
			targetMean:     80,
			wantType:       model.RecommendationStrongSell,
			wantConfidence: 0.8,
		},
		{
			name:           "empty trend counts as hold",
			currentPrice:   100,
			latest:         trend(0, 0, 0, 0, 0),
			wantType:       model.RecommendationHold,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target *dto.FinnhubPriceTargetResponse
			if tt.targetMean > 0 {
				target = &dto.FinnhubPriceTargetResponse{TargetMean: tt.targetMean}
			}

			opinion := src.analyze("AAPL", tt.currentPrice, tt.latest, target)

			assert.Equal(t, tt.wantType, opinion.RecommendationType)
			assert.Equal(t, tt.wantConfidence, opinion.ConfidenceScore)
			assert.Equal(t, "AAPL", opinion.Symbol)
			if target != nil {
				assert.NotNil(t, opinion.TargetPrice)
				assert.Equal(t, tt.targetMean, *opinion.TargetPrice)
			} else {
				assert.Nil(t, opinion.TargetPrice)
			}
		})
	}
}
