package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Instrument struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol       string     `gorm:"not null;uniqueIndex" json:"symbol"`
	Name         string     `json:"name"`
	Exchange     string     `json:"exchange"`
	Currency     string     `gorm:"not null;default:USD" json:"currency"`
	Sector       string     `json:"sector"`
	CurrentPrice float64    `json:"current_price"`
	MarketCap    int64      `json:"market_cap"`
	PriceAsOf    *time.Time `json:"price_as_of"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Instrument) TableName() string {
	return "instruments"
}

func (i *Instrument) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
