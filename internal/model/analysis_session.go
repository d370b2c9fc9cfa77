package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SessionStatusRunning   = "RUNNING"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusFailed    = "FAILED"
)

// AnalysisSession records one end-to-end analysis run for a user.
type AnalysisSession struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status                string         `gorm:"not null;default:RUNNING" json:"status"`
	StartedAt             time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt           *time.Time     `json:"completed_at"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
	ErrorMessage          string         `json:"error_message"`
	Summary               datatypes.JSON `json:"summary"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}

func (s *AnalysisSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SessionSummary is marshaled into AnalysisSession.Summary when a run
// completes.
type SessionSummary struct {
	SymbolsAnalyzed      int     `json:"symbols_analyzed"`
	AdvisorsQueried      int     `json:"advisors_queried"`
	BuyRecommendations   int     `json:"buy_recommendations"`
	SellRecommendations  int     `json:"sell_recommendations"`
	TradesExecuted       int     `json:"trades_executed"`
	TotalCashAllocated   float64 `json:"total_cash_allocated"`
	PortfolioValueBefore float64 `json:"portfolio_value_before"`
}
