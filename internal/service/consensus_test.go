package service

import (
	"testing"

	"soultrader/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func rec(recType string, confidence, weight float64) model.AdvisorRecommendation {
	return model.AdvisorRecommendation{
		RecommendationType: recType,
		ConfidenceScore:    confidence,
		Advisor: model.Advisor{
			Name:   recType,
			Weight: weight,
		},
	}
}

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		name string
		recs []model.AdvisorRecommendation
		want float64
	}{
		{
			name: "no recommendations",
			recs: nil,
			want: 0,
		},
		{
			name: "single strong buy at full confidence",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationStrongBuy, 1.0, 7),
			},
			want: 100,
		},
		{
			name: "confidence scales the stance value",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationBuy, 0.8, 5),
			},
			want: 60, // 75 * 0.8
		},
		{
			name: "weights normalize across advisors",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationStrongBuy, 1.0, 6),
				rec(model.RecommendationHold, 1.0, 3),
			},
			// (100*6 + 50*3) / 9
			want: 83.33,
		},
		{
			name: "strong sell contributes zero",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationStrongSell, 1.0, 5),
				rec(model.RecommendationStrongBuy, 1.0, 5),
			},
			want: 50,
		},
		{
			name: "unknown stance treated as hold",
			recs: []model.AdvisorRecommendation{
				rec("UNKNOWN", 1.0, 5),
			},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, priorityScore(tt.recs), 0.01)
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	recs := []model.AdvisorRecommendation{
		rec(model.RecommendationBuy, 0.9, 7),
		rec(model.RecommendationBuy, 0.6, 1),
	}
	// Plain mean, advisor weight plays no role.
	assert.InDelta(t, 0.75, confidenceScore(recs), 0.001)
	assert.Equal(t, 0.0, confidenceScore(nil))
}

func TestDetermineAction(t *testing.T) {
	tests := []struct {
		name string
		recs []model.AdvisorRecommendation
		want string
	}{
		{
			name: "empty defaults to hold",
			recs: nil,
			want: model.RecommendationHold,
		},
		{
			name: "weighted vote beats headcount",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationSell, 0.9, 8),
				rec(model.RecommendationBuy, 0.9, 3),
				rec(model.RecommendationBuy, 0.9, 3),
			},
			want: model.RecommendationSell,
		},
		{
			name: "strong buy folds into buy",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationStrongBuy, 0.9, 5),
			},
			want: model.RecommendationBuy,
		},
		{
			name: "strong sell folds into sell",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationStrongSell, 0.9, 5),
			},
			want: model.RecommendationSell,
		},
		{
			name: "buy wins ties by stance order",
			recs: []model.AdvisorRecommendation{
				rec(model.RecommendationBuy, 0.9, 5),
				rec(model.RecommendationHold, 0.9, 5),
			},
			want: model.RecommendationBuy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineAction(tt.recs))
		})
	}
}

func TestConsolidateFilters(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())

	instrument := func(symbol string, price float64, marketCap int64) model.Instrument {
		return model.Instrument{Symbol: symbol, CurrentPrice: price, MarketCap: marketCap}
	}

	instruments := map[string]model.Instrument{
		"GOOD":  instrument("GOOD", 150, 2_000_000_000),
		"PENNY": instrument("PENNY", 2, 2_000_000_000),
		"MICRO": instrument("MICRO", 50, 50_000_000),
		"MEH":   instrument("MEH", 80, 5_000_000_000),
		"DUMP":  instrument("DUMP", 90, 3_000_000_000),
	}

	recsByInstrument := map[string][]model.AdvisorRecommendation{
		"GOOD":  {rec(model.RecommendationBuy, 0.9, 5)},
		"PENNY": {rec(model.RecommendationBuy, 0.9, 5)},
		"MICRO": {rec(model.RecommendationBuy, 0.9, 5)},
		"MEH":   {rec(model.RecommendationBuy, 0.5, 5)}, // below min confidence
		"DUMP":  {rec(model.RecommendationSell, 0.9, 5)}, // sell but not owned
	}

	candidates := consolidate(recsByInstrument, instruments, map[string]model.Holding{}, profile, 100_000)

	assert.Len(t, candidates, 1)
	assert.Equal(t, "GOOD", candidates[0].Instrument.Symbol)
	assert.Equal(t, model.RecommendationBuy, candidates[0].RecommendationType)

	// Allowing penny stocks lifts the price and market cap floors while
	// the confidence and ownership filters keep applying.
	profile.AllowPennyStocks = true
	candidates = consolidate(recsByInstrument, instruments, map[string]model.Holding{}, profile, 100_000)

	symbols := make([]string, 0, len(candidates))
	for _, c := range candidates {
		symbols = append(symbols, c.Instrument.Symbol)
	}
	assert.ElementsMatch(t, []string{"GOOD", "PENNY", "MICRO"}, symbols)
}

func TestAverageStopPrice(t *testing.T) {
	withStop := func(stop float64) model.AdvisorRecommendation {
		r := rec(model.RecommendationBuy, 0.9, 5)
		r.StopPrice = &stop
		return r
	}

	recs := []model.AdvisorRecommendation{
		withStop(90),
		withStop(110),
		rec(model.RecommendationBuy, 0.9, 5), // no stop, excluded from the mean
	}

	stop := averageStopPrice(recs)
	assert.NotNil(t, stop)
	assert.InDelta(t, 100.0, *stop, 0.001)

	assert.Nil(t, averageStopPrice([]model.AdvisorRecommendation{
		rec(model.RecommendationBuy, 0.9, 5),
	}))
}

func TestConsolidateSortsByPriority(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())

	instruments := map[string]model.Instrument{
		"A": {Symbol: "A", CurrentPrice: 100, MarketCap: 2_000_000_000},
		"B": {Symbol: "B", CurrentPrice: 100, MarketCap: 2_000_000_000},
	}
	recsByInstrument := map[string][]model.AdvisorRecommendation{
		"A": {rec(model.RecommendationBuy, 0.8, 5)},
		"B": {rec(model.RecommendationStrongBuy, 0.9, 5)},
	}

	candidates := consolidate(recsByInstrument, instruments, map[string]model.Holding{}, profile, 100_000)

	assert.Len(t, candidates, 2)
	assert.Equal(t, "B", candidates[0].Instrument.Symbol)
	assert.Greater(t, candidates[0].PriorityScore, candidates[1].PriorityScore)
}

func TestConsolidatePositionContext(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())

	instruments := map[string]model.Instrument{
		"OWN": {Symbol: "OWN", CurrentPrice: 100, MarketCap: 2_000_000_000},
	}
	recsByInstrument := map[string][]model.AdvisorRecommendation{
		"OWN": {rec(model.RecommendationBuy, 0.9, 5)},
	}
	holdings := map[string]model.Holding{
		"OWN": {
			Quantity:   50,
			Instrument: instruments["OWN"],
		},
	}

	candidates := consolidate(recsByInstrument, instruments, holdings, profile, 100_000)

	assert.Len(t, candidates, 1)
	assert.Equal(t, 50, candidates[0].ExistingShares)
	assert.InDelta(t, 5000.0, candidates[0].PositionValue, 0.001)
	assert.InDelta(t, 5.0, candidates[0].PositionPercentage, 0.001)
}
