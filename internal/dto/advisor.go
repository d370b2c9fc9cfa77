package dto

// AdvisorOpinion is a provider's raw stance on one symbol before it is
// persisted as an AdvisorRecommendation.
type AdvisorOpinion struct {
	Symbol             string   `json:"symbol"`
	RecommendationType string   `json:"recommendation_type"`
	ConfidenceScore    float64  `json:"confidence_score"`
	TargetPrice        *float64 `json:"target_price"`
	StopPrice          *float64 `json:"stop_price"`
	Reasoning          string   `json:"reasoning"`
}

// FinnhubRecommendationResponse mirrors one row of Finnhub's
// /stock/recommendation payload.
type FinnhubRecommendationResponse struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// FinnhubPriceTargetResponse mirrors Finnhub's /stock/price-target payload.
type FinnhubPriceTargetResponse struct {
	Symbol     string  `json:"symbol"`
	TargetMean float64 `json:"targetMean"`
	TargetHigh float64 `json:"targetHigh"`
	TargetLow  float64 `json:"targetLow"`
}

// FMPProfileResponse mirrors one row of FMP's company profile payload.
type FMPProfileResponse struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"companyName"`
	Sector       string  `json:"sector"`
	Price        float64 `json:"price"`
	MarketCap    int64   `json:"mktCap"`
	PERatio      float64 `json:"pe"`
	DebtToEquity float64 `json:"debtToEquity"`
	ROE          float64 `json:"roe"`
}
