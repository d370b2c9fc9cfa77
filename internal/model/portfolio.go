package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Portfolio struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name           string    `gorm:"not null" json:"name"`
	InitialCapital float64   `gorm:"not null" json:"initial_capital"`
	CurrentCapital float64   `gorm:"not null" json:"current_capital"`
	// SellWeightOverride replaces the risk profile's sell weight for
	// this portfolio when set.
	SellWeightOverride *float64  `json:"sell_weight_override"`
	User               User      `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Holdings           []Holding `gorm:"foreignKey:PortfolioID" json:"holdings,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

func (p *Portfolio) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TotalValue is the cash balance plus the market value of every holding,
// priced at each instrument's latest known price.
func (p *Portfolio) TotalValue() float64 {
	total := p.CurrentCapital
	for _, h := range p.Holdings {
		total += float64(h.Quantity) * h.Instrument.CurrentPrice
	}
	return total
}

type Holding struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PortfolioID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_holdings_portfolio_instrument,unique" json:"portfolio_id"`
	InstrumentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_holdings_portfolio_instrument,unique" json:"instrument_id"`
	Quantity     int        `gorm:"not null" json:"quantity"`
	AverageCost  float64    `gorm:"not null" json:"average_cost"`
	Instrument   Instrument `gorm:"foreignKey:InstrumentID;references:ID" json:"instrument"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

func (h *Holding) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// MarketValue prices the holding at the instrument's latest known price.
func (h *Holding) MarketValue() float64 {
	return float64(h.Quantity) * h.Instrument.CurrentPrice
}

// UnrealizedGainPercent returns the percentage gain over the cost basis.
// A zero cost basis yields zero rather than a division error.
func (h *Holding) UnrealizedGainPercent() float64 {
	if h.AverageCost <= 0 {
		return 0
	}
	return (h.Instrument.CurrentPrice - h.AverageCost) / h.AverageCost * 100
}
