package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

const (
	TradeStatusFilled   = "FILLED"
	TradeStatusRejected = "REJECTED"
)

const (
	TradeSourceSmartAnalysis = "SMART_ANALYSIS"
	TradeSourceManual        = "MANUAL"
)

type Trade struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PortfolioID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"portfolio_id"`
	InstrumentID          uuid.UUID  `gorm:"type:uuid;not null" json:"instrument_id"`
	SmartRecommendationID *uuid.UUID `gorm:"type:uuid" json:"smart_recommendation_id"`
	TradeType             string     `gorm:"not null" json:"trade_type"`
	Quantity              int        `gorm:"not null" json:"quantity"`
	Price                 float64    `gorm:"not null" json:"price"`
	Commission            float64    `gorm:"not null" json:"commission"`
	TotalAmount           float64    `gorm:"not null" json:"total_amount"`
	Status                string     `gorm:"not null" json:"status"`
	Source                string     `gorm:"not null" json:"source"`
	Instrument            Instrument `gorm:"foreignKey:InstrumentID;references:ID" json:"instrument"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}

func (t *Trade) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
