package advisor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/pkg/httpclient"
	"soultrader/pkg/logger"

	"golang.org/x/time/rate"
)

// finnhubSource builds a stance from Finnhub's analyst recommendation
// trends and mean price target.
type finnhubSource struct {
	httpClient     httpclient.HTTPClient
	cfg            config.AdvisorAPI
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewFinnhubSource(cfg config.AdvisorAPI, log *logger.Logger) Source {
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &finnhubSource{
		httpClient:     httpclient.New(cfg.BaseURL, cfg.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (s *finnhubSource) Type() string {
	return model.AdvisorTypeFinnhub
}

func (s *finnhubSource) Fetch(ctx context.Context, symbol string, currentPrice float64) (*dto.AdvisorOpinion, error) {
	trends, err := s.getRecommendationTrends(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(trends) == 0 {
		return nil, fmt.Errorf("finnhub has no recommendation trends for %s", symbol)
	}

	// Price target is best effort, the free tier often withholds it.
	priceTarget, err := s.getPriceTarget(ctx, symbol)
	if err != nil {
		s.logger.WarnContext(ctx, "Finnhub price target unavailable",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
		priceTarget = nil
	}

	return s.analyze(symbol, currentPrice, trends[0], priceTarget), nil
}

func (s *finnhubSource) getRecommendationTrends(ctx context.Context, symbol string) ([]dto.FinnhubRecommendationResponse, error) {
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var trends []dto.FinnhubRecommendationResponse
	resp, err := s.httpClient.Get(ctx, "/stock/recommendation", s.params(symbol), nil, &trends)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch finnhub recommendation trends: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub api returned status: %d", resp.StatusCode)
	}
	return trends, nil
}

func (s *finnhubSource) getPriceTarget(ctx context.Context, symbol string) (*dto.FinnhubPriceTargetResponse, error) {
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var target dto.FinnhubPriceTargetResponse
	resp, err := s.httpClient.Get(ctx, "/stock/price-target", s.params(symbol), nil, &target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch finnhub price target: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub api returned status: %d", resp.StatusCode)
	}
	if target.TargetMean <= 0 {
		return nil, fmt.Errorf("finnhub has no price target for %s", symbol)
	}
	return &target, nil
}

func (s *finnhubSource) params(symbol string) map[string]string {
	return map[string]string{
		"symbol": symbol,
		"token":  s.cfg.APIKey,
	}
}

// analyze scores the analyst consensus and price target upside, then
// maps the score onto a stance.
func (s *finnhubSource) analyze(symbol string, currentPrice float64, latest dto.FinnhubRecommendationResponse, priceTarget *dto.FinnhubPriceTargetResponse) *dto.AdvisorOpinion {
	score := 0

	total := latest.StrongBuy + latest.Buy + latest.Hold + latest.Sell + latest.StrongSell
	var buyPct, sellPct float64
	if total > 0 {
		buyPct = float64(latest.StrongBuy+latest.Buy) / float64(total)
		sellPct = float64(latest.Sell+latest.StrongSell) / float64(total)

		switch {
		case buyPct > 0.6:
			score += 2
		case buyPct > 0.4:
			score += 1
		case sellPct > 0.4:
			score -= 2
		}
	}

	var targetPrice *float64
	if priceTarget != nil {
		targetPrice = &priceTarget.TargetMean

		if currentPrice > 0 {
			upside := (priceTarget.TargetMean - currentPrice) / currentPrice
			switch {
			case upside > 0.15:
				score += 2
			case upside > 0.05:
				score += 1
			case upside < -0.10:
				score -= 1
			}
		}
	}

	var recType string
	var confidence float64
	switch {
	case score >= 4:
		recType, confidence = model.RecommendationStrongBuy, 0.9
	case score >= 2:
		recType, confidence = model.RecommendationBuy, 0.75
	case score >= 0:
		recType, confidence = model.RecommendationHold, 0.5
	case score >= -2:
		recType, confidence = model.RecommendationSell, 0.6
	default:
		recType, confidence = model.RecommendationStrongSell, 0.8
	}

	reasoning := fmt.Sprintf(
		"Finnhub analyst consensus for %s: %.0f%% buy, %.0f%% sell across %d ratings (score %d)",
		symbol, buyPct*100, sellPct*100, total, score,
	)

	return &dto.AdvisorOpinion{
		Symbol:             symbol,
		RecommendationType: recType,
		ConfidenceScore:    confidence,
		TargetPrice:        targetPrice,
		Reasoning:          reasoning,
	}
}
