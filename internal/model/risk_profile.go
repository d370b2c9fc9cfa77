package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RiskProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// Buy-side limits.
	MaxPurchasePercentage float64 `gorm:"not null" json:"max_purchase_percentage"`
	MinConfidenceScore    float64 `gorm:"not null" json:"min_confidence_score"`
	CashSpendPercentage   float64 `gorm:"not null" json:"cash_spend_percentage"`

	// Sell-side behavior. SellRecommendationWeight runs 0-10 and is
	// normalized to 0-1 wherever it scales a confidence.
	SellRecommendationWeight float64 `gorm:"not null" json:"sell_recommendation_weight"`
	SellHoldThreshold        float64 `gorm:"not null" json:"sell_hold_threshold"`

	// Profit taking.
	ProfitTakingEnabled   bool    `gorm:"not null" json:"profit_taking_enabled"`
	ProfitTakingThreshold float64 `gorm:"not null" json:"profit_taking_threshold"`
	VolatilityThreshold   float64 `gorm:"not null" json:"volatility_threshold"`

	// Quality filters applied before scoring. AllowPennyStocks turns
	// both price and market cap floors off.
	MinStockPrice    float64 `gorm:"not null" json:"min_stock_price"`
	MinMarketCap     int64   `gorm:"not null" json:"min_market_cap"`
	AllowPennyStocks bool    `gorm:"not null" json:"allow_penny_stocks"`

	AutoExecuteTrades bool      `gorm:"not null" json:"auto_execute_trades"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RiskProfile) TableName() string {
	return "risk_profiles"
}

func (r *RiskProfile) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DefaultRiskProfile returns the moderate profile assigned to users who
// have never tuned their settings.
func DefaultRiskProfile(userID uuid.UUID) *RiskProfile {
	return &RiskProfile{
		UserID:                   userID,
		MaxPurchasePercentage:    5.0,
		MinConfidenceScore:       0.70,
		CashSpendPercentage:      20.0,
		SellRecommendationWeight: 5.0,
		SellHoldThreshold:        0.30,
		ProfitTakingEnabled:      true,
		ProfitTakingThreshold:    10.0,
		VolatilityThreshold:      20.0,
		MinStockPrice:            5.0,
		MinMarketCap:             100_000_000,
		AllowPennyStocks:         false,
		AutoExecuteTrades:        false,
	}
}
