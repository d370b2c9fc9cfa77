package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecommendationStrongBuy  = "STRONG_BUY"
	RecommendationBuy        = "BUY"
	RecommendationHold       = "HOLD"
	RecommendationSell       = "SELL"
	RecommendationStrongSell = "STRONG_SELL"
)

// RecommendationTypeValue maps an advisor stance onto the 0-100 scale
// used by the priority score.
var RecommendationTypeValue = map[string]float64{
	RecommendationStrongSell: 0,
	RecommendationSell:       25,
	RecommendationHold:       50,
	RecommendationBuy:        75,
	RecommendationStrongBuy:  100,
}

// AdvisorRecommendation is a single advisor's raw stance on one
// instrument, with a confidence in [0, 1].
type AdvisorRecommendation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AdvisorID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"advisor_id"`
	InstrumentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"instrument_id"`
	RecommendationType string     `gorm:"not null" json:"recommendation_type"`
	ConfidenceScore    float64    `gorm:"not null" json:"confidence_score"`
	TargetPrice        *float64   `json:"target_price"`
	StopPrice          *float64   `json:"stop_price"`
	Reasoning          string     `json:"reasoning"`
	Advisor            Advisor    `gorm:"foreignKey:AdvisorID;references:ID" json:"advisor"`
	Instrument         Instrument `gorm:"foreignKey:InstrumentID;references:ID" json:"instrument"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	ExpiresAt          time.Time  `gorm:"not null;index" json:"expires_at"`
}

func (AdvisorRecommendation) TableName() string {
	return "advisor_recommendations"
}

func (r *AdvisorRecommendation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *AdvisorRecommendation) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
