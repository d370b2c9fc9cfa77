package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AdvisorStatusActive   = "ACTIVE"
	AdvisorStatusInactive = "INACTIVE"
	AdvisorStatusError    = "ERROR"
)

const (
	AdvisorTypeFinnhub = "FINNHUB"
	AdvisorTypeFMP     = "FMP"
)

// Advisor is a registered recommendation source. Weight runs 0-10 and
// sets how much the consensus trusts this source.
type Advisor struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	AdvisorType   string     `gorm:"not null;uniqueIndex" json:"advisor_type"`
	Weight        float64    `gorm:"not null;default:5" json:"weight"`
	Status        string     `gorm:"not null;default:ACTIVE" json:"status"`
	LastSuccessAt *time.Time `json:"last_success_at"`
	LastErrorAt   *time.Time `json:"last_error_at"`
	LastError     string     `json:"last_error"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Advisor) TableName() string {
	return "advisors"
}

func (a *Advisor) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
