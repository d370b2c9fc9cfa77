package advisor

import (
	"testing"

	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestFMPAnalyze(t *testing.T) {
	src := &fmpSource{logger: logger.NewNop()}

	tests := []struct {
		name           string
		profile        dto.FMPProfileResponse
		wantType       string
		wantConfidence float64
	}{
		{
			name: "cheap profitable low debt",
			// P/E 12 (+2), D/E 0.2 (+1), ROE 20% (+2), score 5
			profile:        dto.FMPProfileResponse{PERatio: 12, DebtToEquity: 0.2, ROE: 0.20},
			wantType:       model.RecommendationStrongBuy,
			wantConfidence: 0.8,
		},
		{
			name: "fair value decent returns",
			// P/E 20 (+1), D/E 0.5 (0), ROE 12% (+1), score 2
			profile:        dto.FMPProfileResponse{PERatio: 20, DebtToEquity: 0.5, ROE: 0.12},
			wantType:       model.RecommendationBuy,
			wantConfidence: 0.65,
		},
		{
			name: "expensive but profitable",
			// P/E 30 (-1), ROE 20% (+2), score 1
			profile:        dto.FMPProfileResponse{PERatio: 30, ROE: 0.20},
			wantType:       model.RecommendationBuy,
			wantConfidence: 0.65,
		},
		{
			name: "expensive and leveraged",
			// P/E 30 (-1), D/E 1.5 (-1), score -2
			profile:        dto.FMPProfileResponse{PERatio: 30, DebtToEquity: 1.5},
			wantType:       model.RecommendationSell,
			wantConfidence: 0.6,
		},
		{
			name:           "missing fundamentals",
			profile:        dto.FMPProfileResponse{},
			wantType:       model.RecommendationHold,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opinion := src.analyze("MSFT", 100, tt.profile)

			assert.Equal(t, tt.wantType, opinion.RecommendationType)
			assert.Equal(t, tt.wantConfidence, opinion.ConfidenceScore)
		})
	}
}

func TestFMPAnalyzeFallbackTarget(t *testing.T) {
	src := &fmpSource{logger: logger.NewNop()}

	// Repricing at P/E 20: 100 * (20/10) = 200.
	opinion := src.analyze("VAL", 100, dto.FMPProfileResponse{PERatio: 10})
	assert.NotNil(t, opinion.TargetPrice)
	assert.InDelta(t, 200, *opinion.TargetPrice, 0.001)

	// No P/E means no valuation target.
	opinion = src.analyze("NOPE", 100, dto.FMPProfileResponse{})
	assert.Nil(t, opinion.TargetPrice)
}
