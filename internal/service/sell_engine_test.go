package service

import (
	"testing"

	"soultrader/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sellCandidate(symbol, recType string, confidence float64, existingShares int, price float64) *Candidate {
	return &Candidate{
		Instrument:         model.Instrument{Symbol: symbol, CurrentPrice: price},
		RecommendationType: recType,
		ConfidenceScore:    confidence,
		ExistingShares:     existingShares,
		CurrentPrice:       price,
	}
}

func TestApplySellAlgorithm(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New()) // sell weight 5, threshold 0.30

	tests := []struct {
		name       string
		candidate  *Candidate
		wantShares int
	}{
		{
			name: "sell stance above threshold",
			// adjusted = 0.8*5/10 = 0.40, sells 40% of 100
			candidate:  sellCandidate("AAA", model.RecommendationSell, 0.8, 100, 50),
			wantShares: 40,
		},
		{
			name: "hold stance at half strength",
			// adjusted = 0.8*0.5*5/10 = 0.20 < 0.30, no sale
			candidate:  sellCandidate("BBB", model.RecommendationHold, 0.8, 100, 50),
			wantShares: 0,
		},
		{
			name: "full confidence hold stays under threshold",
			// adjusted = 1.0*0.5*5/10 = 0.25 < 0.30, no sale
			candidate:  sellCandidate("CCC", model.RecommendationHold, 1.0, 100, 50),
			wantShares: 0,
		},
		{
			name:       "not owned never sells",
			candidate:  sellCandidate("DDD", model.RecommendationSell, 0.9, 0, 50),
			wantShares: 0,
		},
		{
			name:       "buy stance ignored",
			candidate:  sellCandidate("EEE", model.RecommendationBuy, 0.9, 100, 50),
			wantShares: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applySellAlgorithm([]*Candidate{tt.candidate}, profile, profile.SellRecommendationWeight)
			if tt.wantShares == 0 {
				assert.Empty(t, result)
				return
			}
			assert.Len(t, result, 1)
			assert.Equal(t, tt.wantShares, result[0].SharesToSell)
			assert.Equal(t, model.RecommendationSell, result[0].RecommendationType)
			assert.InDelta(t, float64(tt.wantShares)*50, result[0].CashFromSale, 0.001)
		})
	}
}

func TestApplySellAlgorithm_ConfidenceClamp(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	profile.SellRecommendationWeight = 10

	// adjusted = 1.0*10/10 = 1.0, clamped, sells the entire position.
	result := applySellAlgorithm([]*Candidate{
		sellCandidate("ALL", model.RecommendationSell, 1.0, 80, 25),
	}, profile, profile.SellRecommendationWeight)

	assert.Len(t, result, 1)
	assert.Equal(t, 80, result[0].SharesToSell)
}

func TestEffectiveSellWeight(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New()) // sell weight 5

	override := 8.0
	assert.Equal(t, 5.0, effectiveSellWeight(&model.Portfolio{}, profile))
	assert.Equal(t, 8.0, effectiveSellWeight(&model.Portfolio{SellWeightOverride: &override}, profile))
	assert.Equal(t, 5.0, effectiveSellWeight(nil, profile))
}

func TestApplySellAlgorithm_PortfolioOverride(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New()) // sell weight 5, threshold 0.30
	override := 8.0
	portfolio := &model.Portfolio{SellWeightOverride: &override}

	// At the profile weight: 0.5*5/10 = 0.25 < 0.30, no sale. With the
	// portfolio override: 0.5*8/10 = 0.40, sells 40 of 100.
	candidate := func() *Candidate {
		return sellCandidate("OVR", model.RecommendationSell, 0.5, 100, 50)
	}

	unaffected := applySellAlgorithm([]*Candidate{candidate()}, profile, effectiveSellWeight(&model.Portfolio{}, profile))
	assert.Empty(t, unaffected)

	result := applySellAlgorithm([]*Candidate{candidate()}, profile, effectiveSellWeight(portfolio, profile))
	assert.Len(t, result, 1)
	assert.Equal(t, 40, result[0].SharesToSell)
}

func holdingWith(symbol string, qty int, avgCost, price float64, marketCap int64) model.Holding {
	return model.Holding{
		Quantity:    qty,
		AverageCost: avgCost,
		Instrument: model.Instrument{
			Symbol:       symbol,
			CurrentPrice: price,
			MarketCap:    marketCap,
		},
	}
}

func TestCheckProfitTaking(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New()) // threshold 10%, volatility 20

	tests := []struct {
		name       string
		holding    model.Holding
		wantShares int
	}{
		{
			name: "volatile small cap with big gain",
			// gain 50%, small cap volatility 30.
			// gain confidence = min(50/20, 1) = 1, adjusted = 5/10 = 0.5
			holding:    holdingWith("WIN", 100, 10, 15, 500_000_000),
			wantShares: 50,
		},
		{
			name: "gain below threshold",
			// gain 5% < 10%
			holding:    holdingWith("FLAT", 100, 100, 105, 500_000_000),
			wantShares: 0,
		},
		{
			name: "mega cap below volatility threshold",
			// volatility proxy 20 >= threshold 20, gain 50% still fires
			holding:    holdingWith("MEGA", 100, 10, 15, 50_000_000_000),
			wantShares: 50,
		},
		{
			name:       "losing position never fires",
			holding:    holdingWith("LOSS", 100, 20, 10, 500_000_000),
			wantShares: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holdings := map[string]model.Holding{tt.holding.Instrument.Symbol: tt.holding}
			result := checkProfitTaking(holdings, profile, profile.SellRecommendationWeight, 100_000)
			if tt.wantShares == 0 {
				assert.Empty(t, result)
				return
			}
			assert.Len(t, result, 1)
			assert.Equal(t, tt.wantShares, result[0].SharesToSell)
			assert.Equal(t, model.RecommendationSell, result[0].RecommendationType)
			assert.Equal(t, profitTakingPriorityScore, result[0].PriorityScore)
		})
	}
}

func TestCheckProfitTakingDisabled(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	profile.ProfitTakingEnabled = false

	holdings := map[string]model.Holding{
		"WIN": holdingWith("WIN", 100, 10, 15, 500_000_000),
	}

	assert.Empty(t, checkProfitTaking(holdings, profile, profile.SellRecommendationWeight, 100_000))
}

func TestVolatilityProxy(t *testing.T) {
	assert.Equal(t, 25.0, volatilityProxy(0))
	assert.Equal(t, 30.0, volatilityProxy(999_999_999))
	assert.Equal(t, 25.0, volatilityProxy(5_000_000_000))
	assert.Equal(t, 20.0, volatilityProxy(50_000_000_000))
}

func TestRecentGainPercent(t *testing.T) {
	assert.InDelta(t, 50.0, recentGainPercent(holdingWith("A", 10, 10, 15, 0)), 0.001)
	assert.Equal(t, 0.0, recentGainPercent(holdingWith("B", 10, 20, 10, 0)))
	assert.Equal(t, 0.0, recentGainPercent(holdingWith("C", 10, 0, 10, 0)))
	// Missing price falls back to cost basis, zero gain.
	assert.Equal(t, 0.0, recentGainPercent(holdingWith("D", 10, 10, 0, 0)))
}
