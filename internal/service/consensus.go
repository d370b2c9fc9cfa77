package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"soultrader/internal/model"
)

// Candidate is one instrument's consolidated view across advisors,
// carrying the sizing fields filled in by the buy and sell engines.
type Candidate struct {
	Instrument         model.Instrument
	RecommendationType string
	PriorityScore      float64
	ConfidenceScore    float64
	ExistingShares     int
	PositionValue      float64
	PositionPercentage float64
	CurrentPrice       float64
	TargetPrice        *float64
	StopPrice          *float64
	Reasoning          string
	Recommendations    []model.AdvisorRecommendation

	SharesToBuy   int
	SharesToSell  int
	CashAllocated float64
	CashFromSale  float64

	initialWeight  float64
	adjustedWeight float64
	eliminated     bool
}

// round2 matches the two decimal quantization applied to scores.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// priorityScore is the weighted consensus score on a 0-100 scale. Each
// advisor contributes its stance value scaled by its confidence and
// weight, normalized by the total weight.
func priorityScore(recs []model.AdvisorRecommendation) float64 {
	if len(recs) == 0 {
		return 0
	}

	var totalScore, totalWeight float64
	for _, rec := range recs {
		base, ok := model.RecommendationTypeValue[rec.RecommendationType]
		if !ok {
			base = model.RecommendationTypeValue[model.RecommendationHold]
		}
		totalScore += base * rec.ConfidenceScore * rec.Advisor.Weight
		totalWeight += rec.Advisor.Weight
	}

	if totalWeight <= 0 {
		return 0
	}
	return round2(totalScore / totalWeight)
}

// confidenceScore is the plain mean of advisor confidences.
func confidenceScore(recs []model.AdvisorRecommendation) float64 {
	if len(recs) == 0 {
		return 0
	}

	var total float64
	for _, rec := range recs {
		total += rec.ConfidenceScore
	}
	return round2(total / float64(len(recs)))
}

// determineAction runs a weight-weighted vote across stances and folds
// the winner into BUY, SELL or HOLD.
func determineAction(recs []model.AdvisorRecommendation) string {
	if len(recs) == 0 {
		return model.RecommendationHold
	}

	votes := map[string]float64{}
	for _, rec := range recs {
		votes[rec.RecommendationType] += rec.Advisor.Weight
	}

	winner := model.RecommendationHold
	best := math.Inf(-1)
	// Iterate in fixed stance order so ties resolve deterministically.
	for _, stance := range []string{
		model.RecommendationStrongBuy,
		model.RecommendationBuy,
		model.RecommendationHold,
		model.RecommendationSell,
		model.RecommendationStrongSell,
	} {
		if v, ok := votes[stance]; ok && v > best {
			best = v
			winner = stance
		}
	}

	switch winner {
	case model.RecommendationStrongBuy, model.RecommendationBuy:
		return model.RecommendationBuy
	case model.RecommendationStrongSell, model.RecommendationSell:
		return model.RecommendationSell
	default:
		return model.RecommendationHold
	}
}

// averageTargetPrice averages the targets of advisors that provided one.
func averageTargetPrice(recs []model.AdvisorRecommendation) *float64 {
	var total float64
	var count int
	for _, rec := range recs {
		if rec.TargetPrice != nil {
			total += *rec.TargetPrice
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// averageStopPrice averages the stop prices of advisors that set one.
func averageStopPrice(recs []model.AdvisorRecommendation) *float64 {
	var total float64
	var count int
	for _, rec := range recs {
		if rec.StopPrice != nil {
			total += *rec.StopPrice
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

func consolidateReasoning(recs []model.AdvisorRecommendation) string {
	parts := make([]string, 0, len(recs))
	for _, rec := range recs {
		parts = append(parts, fmt.Sprintf("%s: %s", rec.Advisor.Name, rec.Reasoning))
	}
	return strings.Join(parts, "\n\n")
}

// consolidate groups recommendations per instrument, scores them and
// applies the confidence and quality filters. Candidates come back
// sorted by priority score, highest first.
func consolidate(
	recsByInstrument map[string][]model.AdvisorRecommendation,
	instruments map[string]model.Instrument,
	holdings map[string]model.Holding,
	profile *model.RiskProfile,
	portfolioValue float64,
) []*Candidate {
	candidates := make([]*Candidate, 0, len(recsByInstrument))

	for symbol, recs := range recsByInstrument {
		if len(recs) == 0 {
			continue
		}
		instrument, ok := instruments[symbol]
		if !ok {
			continue
		}

		confidence := confidenceScore(recs)
		if confidence < profile.MinConfidenceScore {
			continue
		}

		// Penny stock and micro-cap filters, unless the profile allows
		// penny stocks outright.
		if !profile.AllowPennyStocks {
			if instrument.CurrentPrice > 0 && instrument.CurrentPrice < profile.MinStockPrice {
				continue
			}
			if instrument.MarketCap > 0 && instrument.MarketCap < profile.MinMarketCap {
				continue
			}
		}

		var existingShares int
		if holding, owned := holdings[symbol]; owned {
			existingShares = holding.Quantity
		}

		action := determineAction(recs)
		if action == model.RecommendationSell && existingShares == 0 {
			continue
		}

		positionValue := float64(existingShares) * instrument.CurrentPrice
		var positionPct float64
		if portfolioValue > 0 {
			positionPct = positionValue / portfolioValue * 100
		}

		candidates = append(candidates, &Candidate{
			Instrument:         instrument,
			RecommendationType: action,
			PriorityScore:      priorityScore(recs),
			ConfidenceScore:    confidence,
			ExistingShares:     existingShares,
			PositionValue:      positionValue,
			PositionPercentage: positionPct,
			CurrentPrice:       instrument.CurrentPrice,
			TargetPrice:        averageTargetPrice(recs),
			StopPrice:          averageStopPrice(recs),
			Reasoning:          consolidateReasoning(recs),
			Recommendations:    recs,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PriorityScore > candidates[j].PriorityScore
	})
	return candidates
}
