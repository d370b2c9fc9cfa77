package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SmartRecommendationPending  = "PENDING"
	SmartRecommendationExecuted = "EXECUTED"
	SmartRecommendationExpired  = "EXPIRED"
	SmartRecommendationRejected = "REJECTED"
)

// SmartRecommendation is the engine's final, sized instruction for one
// instrument within a session. Buys carry SharesToBuy and CashAllocated,
// sells carry SharesToSell.
type SmartRecommendation struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	InstrumentID       uuid.UUID       `gorm:"type:uuid;not null" json:"instrument_id"`
	RecommendationType string          `gorm:"not null" json:"recommendation_type"`
	ConfidenceScore    float64         `gorm:"not null" json:"confidence_score"`
	PriorityScore      float64         `gorm:"not null" json:"priority_score"`
	CurrentPrice       float64         `gorm:"not null" json:"current_price"`
	SharesToBuy        int             `json:"shares_to_buy"`
	SharesToSell       int             `json:"shares_to_sell"`
	CashAllocated      float64         `json:"cash_allocated"`
	Reasoning          string          `json:"reasoning"`
	Status             string          `gorm:"not null;default:PENDING" json:"status"`
	ExecutedAt         *time.Time      `json:"executed_at"`
	Session            AnalysisSession `gorm:"foreignKey:SessionID;references:ID" json:"-"`
	Instrument         Instrument      `gorm:"foreignKey:InstrumentID;references:ID" json:"instrument"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SmartRecommendation) TableName() string {
	return "smart_recommendations"
}

func (r *SmartRecommendation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
