package service

import (
	"fmt"

	"soultrader/internal/model"
)

const profitTakingPriorityScore = 90.0

// effectiveSellWeight resolves the sell weight for a run: the portfolio
// override when set, otherwise the risk profile's weight.
func effectiveSellWeight(portfolio *model.Portfolio, profile *model.RiskProfile) float64 {
	if portfolio != nil && portfolio.SellWeightOverride != nil {
		return *portfolio.SellWeightOverride
	}
	return profile.SellRecommendationWeight
}

// applySellAlgorithm turns SELL and HOLD consensus on owned names into
// sized sell instructions. The sell weight (0-10) scales the consensus
// confidence, HOLD stances at half strength, and the result is
// normalized to 0-1 and compared against the sell/hold threshold. The
// surviving confidence doubles as the fraction of the position to sell.
func applySellAlgorithm(candidates []*Candidate, profile *model.RiskProfile, sellWeight float64) []*Candidate {
	sells := make([]*Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c.ExistingShares <= 0 {
			continue
		}
		if c.RecommendationType != model.RecommendationSell && c.RecommendationType != model.RecommendationHold {
			continue
		}

		adjusted := c.ConfidenceScore * sellWeight
		if c.RecommendationType == model.RecommendationHold {
			adjusted = c.ConfidenceScore * 0.5 * sellWeight
		}
		adjusted = min1(adjusted / 10)

		if adjusted < profile.SellHoldThreshold {
			continue
		}

		sharesToSell := int(float64(c.ExistingShares) * adjusted)
		if sharesToSell > c.ExistingShares {
			sharesToSell = c.ExistingShares
		}
		if sharesToSell <= 0 {
			continue
		}

		c.RecommendationType = model.RecommendationSell
		c.SharesToSell = sharesToSell
		c.CashFromSale = float64(sharesToSell) * c.CurrentPrice
		c.Reasoning = fmt.Sprintf("%s\n\nSell sizing: adjusted confidence %.2f, selling %d of %d shares",
			c.Reasoning, adjusted, sharesToSell, c.ExistingShares)
		sells = append(sells, c)
	}

	return sells
}

// checkProfitTaking emits sell instructions for holdings that combine a
// large unrealized gain with high volatility. Confidence scales with
// the gain, maxing out at a 20 percent gain, and is then damped by the
// sell weight the same way advisor-driven sells are.
func checkProfitTaking(holdings map[string]model.Holding, profile *model.RiskProfile, sellWeight, portfolioValue float64) []*Candidate {
	if !profile.ProfitTakingEnabled {
		return nil
	}

	candidates := make([]*Candidate, 0)

	for _, holding := range holdings {
		gain := recentGainPercent(holding)
		volatility := volatilityProxy(holding.Instrument.MarketCap)

		if gain < profile.ProfitTakingThreshold || volatility < profile.VolatilityThreshold {
			continue
		}

		gainConfidence := min1(gain / 20)
		adjusted := min1(gainConfidence * sellWeight / 10)

		sharesToSell := int(float64(holding.Quantity) * adjusted)
		if sharesToSell <= 0 {
			continue
		}

		positionValue := holding.MarketValue()
		var positionPct float64
		if portfolioValue > 0 {
			positionPct = positionValue / portfolioValue * 100
		}

		candidates = append(candidates, &Candidate{
			Instrument:         holding.Instrument,
			RecommendationType: model.RecommendationSell,
			PriorityScore:      profitTakingPriorityScore,
			ConfidenceScore:    gainConfidence,
			ExistingShares:     holding.Quantity,
			PositionValue:      positionValue,
			PositionPercentage: positionPct,
			CurrentPrice:       holding.Instrument.CurrentPrice,
			SharesToSell:       sharesToSell,
			CashFromSale:       float64(sharesToSell) * holding.Instrument.CurrentPrice,
			Reasoning: fmt.Sprintf("Profit taking: %.1f%% gain on volatile stock (%.1f%% volatility), selling %d of %d shares",
				gain, volatility, sharesToSell, holding.Quantity),
		})
	}

	return candidates
}

// recentGainPercent is the unrealized gain over cost basis, floored at
// zero.
func recentGainPercent(holding model.Holding) float64 {
	if holding.AverageCost <= 0 {
		return 0
	}
	price := holding.Instrument.CurrentPrice
	if price <= 0 {
		price = holding.AverageCost
	}
	gain := (price - holding.AverageCost) / holding.AverageCost * 100
	if gain < 0 {
		return 0
	}
	return gain
}

// volatilityProxy estimates volatility from market cap: small caps swing
// harder than mega caps. Unknown caps default to the middle band.
func volatilityProxy(marketCap int64) float64 {
	switch {
	case marketCap <= 0:
		return 25
	case marketCap < 1_000_000_000:
		return 30
	case marketCap < 10_000_000_000:
		return 25
	default:
		return 20
	}
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
