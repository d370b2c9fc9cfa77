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
	"soultrader/pkg/utils"

	"golang.org/x/time/rate"
)

// fmpSource builds a stance from Financial Modeling Prep's company
// fundamentals: valuation, leverage and profitability.
type fmpSource struct {
	httpClient     httpclient.HTTPClient
	cfg            config.AdvisorAPI
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewFMPSource(cfg config.AdvisorAPI, log *logger.Logger) Source {
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &fmpSource{
		httpClient:     httpclient.New(cfg.BaseURL, cfg.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (s *fmpSource) Type() string {
	return model.AdvisorTypeFMP
}

func (s *fmpSource) Fetch(ctx context.Context, symbol string, currentPrice float64) (*dto.AdvisorOpinion, error) {
	if err := s.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var profiles []dto.FMPProfileResponse
	resp, err := s.httpClient.Get(ctx, "/profile/"+symbol, map[string]string{"apikey": s.cfg.APIKey}, nil, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fmp profile: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fmp api returned status: %d", resp.StatusCode)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("fmp has no profile for %s", symbol)
	}

	return s.analyze(symbol, currentPrice, profiles[0]), nil
}

// analyze scores valuation, leverage and profitability, then maps the
// score onto a stance. FMP fundamentals never yield STRONG_SELL, the
// worst score maps to SELL.
func (s *fmpSource) analyze(symbol string, currentPrice float64, profile dto.FMPProfileResponse) *dto.AdvisorOpinion {
	score := 0

	if profile.PERatio > 0 {
		switch {
		case profile.PERatio < 15:
			score += 2
		case profile.PERatio < 25:
			score += 1
		default:
			score -= 1
		}
	}

	if profile.DebtToEquity > 0 {
		switch {
		case profile.DebtToEquity < 0.3:
			score += 1
		case profile.DebtToEquity > 1.0:
			score -= 1
		}
	}

	if profile.ROE > 0 {
		switch {
		case profile.ROE > 0.15:
			score += 2
		case profile.ROE > 0.10:
			score += 1
		}
	}

	var recType string
	var confidence float64
	switch {
	case score >= 3:
		recType, confidence = model.RecommendationStrongBuy, 0.8
	case score >= 1:
		recType, confidence = model.RecommendationBuy, 0.65
	case score >= -1:
		recType, confidence = model.RecommendationHold, 0.5
	default:
		recType, confidence = model.RecommendationSell, 0.6
	}

	// Fallback valuation target when no analyst estimate is available:
	// reprice the stock at an assumed industry P/E of 20.
	var targetPrice *float64
	if profile.PERatio > 0 && currentPrice > 0 {
		targetPrice = utils.ToPointer(currentPrice * (20 / profile.PERatio))
	}

	reasoning := fmt.Sprintf(
		"FMP fundamental analysis for %s: P/E %.1f, D/E %.2f, ROE %.1f%% (score %d)",
		symbol, profile.PERatio, profile.DebtToEquity, profile.ROE*100, score,
	)

	return &dto.AdvisorOpinion{
		Symbol:             symbol,
		RecommendationType: recType,
		ConfidenceScore:    confidence,
		TargetPrice:        targetPrice,
		Reasoning:          reasoning,
	}
}
