package service

import (
	"testing"

	"soultrader/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func buyCandidate(symbol string, priority, price float64, existingShares int, positionPct float64) *Candidate {
	return &Candidate{
		Instrument:         model.Instrument{Symbol: symbol, CurrentPrice: price},
		RecommendationType: model.RecommendationBuy,
		PriorityScore:      priority,
		CurrentPrice:       price,
		ExistingShares:     existingShares,
		PositionPercentage: positionPct,
	}
}

func TestApplyBuyAlgorithm_FreshPortfolio(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	// 20% of 100k = 20k budget.
	candidates := []*Candidate{
		buyCandidate("AAA", 80, 100, 0, 0),
		buyCandidate("BBB", 40, 50, 0, 0),
	}

	result := applyBuyAlgorithm(candidates, 100_000, profile)

	assert.Len(t, result, 2)
	// Weights 80/120 and 40/120 hold through both passes when nothing
	// is owned, so the sizing matches pass one.
	assert.Equal(t, 133, result[0].SharesToBuy) // 20000*(2/3)/100
	assert.Equal(t, 133, result[1].SharesToBuy) // 20000*(1/3)/50
	assert.InDelta(t, 13300, result[0].CashAllocated, 0.001)
	assert.InDelta(t, 6650, result[1].CashAllocated, 0.001)
}

func TestApplyBuyAlgorithm_NoBuyCandidates(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	candidates := []*Candidate{
		{RecommendationType: model.RecommendationSell, PriorityScore: 20},
	}

	assert.Empty(t, applyBuyAlgorithm(candidates, 100_000, profile))
}

func TestApplyBuyAlgorithm_MaxPositionFilter(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New()) // max purchase 5%
	candidates := []*Candidate{
		buyCandidate("FULL", 90, 100, 0, 6.0),
		buyCandidate("ROOM", 60, 100, 0, 2.0),
	}

	result := applyBuyAlgorithm(candidates, 100_000, profile)

	assert.Len(t, result, 1)
	assert.Equal(t, "ROOM", result[0].Instrument.Symbol)
	// Sole survivor takes the whole budget.
	assert.Equal(t, 200, result[0].SharesToBuy) // 20000/100
}

func TestApplyBuyAlgorithm_EliminatesCoveredPosition(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	// Ideal size is 200 shares, all already owned.
	candidates := []*Candidate{
		buyCandidate("HELD", 100, 100, 200, 4.0),
	}

	assert.Empty(t, applyBuyAlgorithm(candidates, 100_000, profile))
}

func TestApplyBuyAlgorithm_DampsPartialPosition(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	// Budget 20k. Equal priorities so initial weights are 0.5 each.
	// NEW: ideal 100 shares, nothing owned.
	// HELD: ideal 100 shares, 60 owned, so net 40 and the weight damps
	// to 0.5 * (1 - 60/100) = 0.2.
	candidates := []*Candidate{
		buyCandidate("NEW", 50, 100, 0, 0),
		buyCandidate("HELD", 50, 100, 60, 3.0),
	}

	result := applyBuyAlgorithm(candidates, 100_000, profile)

	assert.Len(t, result, 2)
	var newC, heldC *Candidate
	for _, c := range result {
		if c.Instrument.Symbol == "NEW" {
			newC = c
		} else {
			heldC = c
		}
	}

	// Pass two renormalizes: adjusted cash spend 20000/0.7.
	// NEW: int(28571.42*0.5/100) = 142 shares.
	// HELD: int(28571.42*0.2/100) - 60 = 57 - 60 < 0, clamps to 0.
	assert.Equal(t, 142, newC.SharesToBuy)
	assert.Equal(t, 0, heldC.SharesToBuy)
	assert.Equal(t, 0.0, heldC.CashAllocated)
}

func TestApplyBuyAlgorithm_ZeroPriorityTotal(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	candidates := []*Candidate{
		buyCandidate("ZERO", 0, 100, 0, 0),
	}

	assert.Empty(t, applyBuyAlgorithm(candidates, 100_000, profile))
}

func TestResizeToDampedWeights_ZeroTotalWeight(t *testing.T) {
	// Pass one leaves share counts behind; a zero damped weight total
	// must not let them leak through as sized buys.
	c := buyCandidate("STUCK", 50, 100, 0, 0)
	c.SharesToBuy = 100
	c.adjustedWeight = 0

	assert.Nil(t, resizeToDampedWeights([]*Candidate{c}, 20_000))
}

func TestApplyBuyAlgorithm_TruncatesFractionalShares(t *testing.T) {
	profile := model.DefaultRiskProfile(uuid.New())
	candidates := []*Candidate{
		buyCandidate("ODD", 100, 333, 0, 0),
	}

	result := applyBuyAlgorithm(candidates, 100_000, profile)

	assert.Len(t, result, 1)
	// 20000/333 = 60.06, truncated toward zero.
	assert.Equal(t, 60, result[0].SharesToBuy)
	assert.InDelta(t, 19980, result[0].CashAllocated, 0.001)
}
