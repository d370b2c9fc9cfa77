package dto

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateRiskProfileRequest carries a partial update, nil fields keep the
// stored value.
type UpdateRiskProfileRequest struct {
	MaxPurchasePercentage    *float64 `json:"max_purchase_percentage" validate:"omitempty,gt=0,lte=100"`
	MinConfidenceScore       *float64 `json:"min_confidence_score" validate:"omitempty,gte=0,lte=1"`
	CashSpendPercentage      *float64 `json:"cash_spend_percentage" validate:"omitempty,gt=0,lte=100"`
	SellRecommendationWeight *float64 `json:"sell_recommendation_weight" validate:"omitempty,gte=0,lte=10"`
	SellHoldThreshold        *float64 `json:"sell_hold_threshold" validate:"omitempty,gte=0,lte=1"`
	ProfitTakingEnabled      *bool    `json:"profit_taking_enabled"`
	ProfitTakingThreshold    *float64 `json:"profit_taking_threshold" validate:"omitempty,gte=0"`
	VolatilityThreshold      *float64 `json:"volatility_threshold" validate:"omitempty,gte=0"`
	MinStockPrice            *float64 `json:"min_stock_price" validate:"omitempty,gte=0"`
	MinMarketCap             *int64   `json:"min_market_cap" validate:"omitempty,gte=0"`
	AllowPennyStocks         *bool    `json:"allow_penny_stocks"`
	AutoExecuteTrades        *bool    `json:"auto_execute_trades"`
}
