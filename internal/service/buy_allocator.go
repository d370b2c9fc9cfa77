package service

import "soultrader/internal/model"

// applyBuyAlgorithm sizes BUY candidates with the two-pass weight-damped
// allocator.
//
// Pass one weights each candidate by its share of total priority score,
// sizes an ideal position from the cash spend budget, and nets out
// shares already owned. Candidates fully covered by an existing
// position drop out; partially covered ones get their weight damped by
// the owned fraction so repeat runs stop piling into the same names.
// Pass two re-sizes the survivors against the damped weights with the
// budget renormalized over them.
func applyBuyAlgorithm(candidates []*Candidate, availableCash float64, profile *model.RiskProfile) []*Candidate {
	buys := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.RecommendationType == model.RecommendationBuy {
			buys = append(buys, c)
		}
	}
	if len(buys) == 0 {
		return nil
	}

	cashSpend := availableCash * (profile.CashSpendPercentage / 100)

	// Drop names already at the max position size.
	filtered := make([]*Candidate, 0, len(buys))
	for _, c := range buys {
		if c.PositionPercentage < profile.MaxPurchasePercentage {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	var totalPS float64
	for _, c := range filtered {
		totalPS += c.PriorityScore
	}
	if totalPS <= 0 {
		return nil
	}
	for _, c := range filtered {
		c.initialWeight = c.PriorityScore / totalPS
	}

	// Pass one: ideal shares, net of the existing position.
	for _, c := range filtered {
		sharesToBuy := int(cashSpend * c.initialWeight / c.CurrentPrice)
		netShares := sharesToBuy - c.ExistingShares

		if netShares <= 0 {
			c.eliminated = true
			c.SharesToBuy = 0
			c.adjustedWeight = 0
			continue
		}

		c.eliminated = false
		c.SharesToBuy = netShares
		if c.ExistingShares > 0 {
			weightReduction := float64(c.ExistingShares) / float64(c.ExistingShares+netShares)
			c.adjustedWeight = c.initialWeight * (1 - weightReduction)
		} else {
			c.adjustedWeight = c.initialWeight
		}
	}

	active := make([]*Candidate, 0, len(filtered))
	for _, c := range filtered {
		if !c.eliminated {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}

	return resizeToDampedWeights(active, cashSpend)
}

// resizeToDampedWeights is pass two: the budget is renormalized over the
// damped weights and every survivor re-sized against it. A zero total
// weight means nothing is left to size.
func resizeToDampedWeights(active []*Candidate, cashSpend float64) []*Candidate {
	var totalAdjusted float64
	for _, c := range active {
		totalAdjusted += c.adjustedWeight
	}
	if totalAdjusted <= 0 {
		return nil
	}

	adjustedCashSpend := cashSpend / totalAdjusted
	for _, c := range active {
		sharesToBuy := int(adjustedCashSpend * c.adjustedWeight / c.CurrentPrice)
		netShares := sharesToBuy - c.ExistingShares

		if netShares > 0 {
			c.SharesToBuy = netShares
			c.CashAllocated = float64(netShares) * c.CurrentPrice
		} else {
			c.SharesToBuy = 0
			c.CashAllocated = 0
		}
	}

	return active
}
