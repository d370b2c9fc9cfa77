package dto

import "time"

// Quote is the normalized market data snapshot for one symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Exchange  string    `json:"exchange"`
	Sector    string    `json:"sector"`
	Price     float64   `json:"price"`
	MarketCap int64     `json:"market_cap"`
	AsOf      time.Time `json:"as_of"`
}

// QuoteResponse mirrors the provider's /quote payload.
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	MarketCap     int64   `json:"marketCap"`
	Exchange      string  `json:"exchange"`
	Sector        string  `json:"sector"`
	PreviousClose float64 `json:"previousClose"`
	Timestamp     int64   `json:"timestamp"`
}
