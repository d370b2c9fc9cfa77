package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/pkg/cache"
	"soultrader/pkg/httpclient"
	"soultrader/pkg/logger"

	"golang.org/x/time/rate"
)

type MarketDataRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type marketDataRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewMarketDataRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &marketDataRepository{
		httpClient:     httpclient.New(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *marketDataRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	cacheKey := cache.QuoteKey(symbol)
	if cached, found := cache.GetFromCache[*dto.Quote](cacheKey); found {
		return cached, nil
	}

	if !r.requestLimiter.Allow() {
		r.logger.WarnContext(ctx, "Market data API request limit exceeded",
			logger.StringField("symbol", symbol),
			logger.IntField("max_request_per_minute", r.cfg.MarketData.MaxRequestPerMinute),
		)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/quote/" + symbol

	var quoteResp []dto.QuoteResponse
	resp, err := r.httpClient.Get(ctx, endpoint, nil, nil, &quoteResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Market data API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("market data api returned status: %d", resp.StatusCode)
	}

	if len(quoteResp) == 0 {
		return nil, fmt.Errorf("no quote data for symbol: %s", symbol)
	}

	raw := quoteResp[0]
	if raw.Price <= 0 {
		return nil, fmt.Errorf("invalid price for symbol %s: %f", symbol, raw.Price)
	}

	quote := &dto.Quote{
		Symbol:    symbol,
		Name:      raw.Name,
		Exchange:  raw.Exchange,
		Sector:    raw.Sector,
		Price:     raw.Price,
		MarketCap: raw.MarketCap,
		AsOf:      time.Now(),
	}

	cache.GetInMemoryCache().Set(cacheKey, quote, r.cfg.MarketData.QuoteCacheDuration)

	return quote, nil
}
