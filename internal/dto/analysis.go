package dto

import (
	"time"

	"github.com/google/uuid"

	"soultrader/internal/model"
)

type RunAnalysisRequest struct {
	UserID      string   `json:"user_id" validate:"required,uuid4"`
	Symbols     []string `json:"symbols" validate:"omitempty,dive,required"`
	AutoExecute *bool    `json:"auto_execute"`
	DryRun      bool     `json:"dry_run"`
	Force       bool     `json:"force"`
}

type BatchAnalysisRequest struct {
	UserIDs     []string `json:"user_ids" validate:"omitempty,dive,uuid4"`
	AutoExecute *bool    `json:"auto_execute"`
	DryRun      bool     `json:"dry_run"`
	Force       bool     `json:"force"`
	MinCash     *float64 `json:"min_cash" validate:"omitempty,gte=0"`
	MaxUsers    *int     `json:"max_users" validate:"omitempty,gt=0"`
}

// AnalysisOptions tunes one analysis run. The zero value runs with
// defaults: persist everything, honor the freshness window, no
// execution.
type AnalysisOptions struct {
	// AutoExecute requests trade execution; it only takes effect when the
	// user's risk profile also enables it.
	AutoExecute *bool
	// DryRun computes and returns recommendations without persisting or
	// executing them.
	DryRun bool
	// Force re-queries every advisor even when fresh rows exist.
	Force bool
}

// BatchAnalysisOptions extends AnalysisOptions with batch-level caps.
type BatchAnalysisOptions struct {
	AnalysisOptions
	// MinCash excludes users whose cash balance is below it.
	MinCash *float64
	// MaxUsers caps how many active users a batch picks up when no
	// explicit user list is given.
	MaxUsers *int
}

type ExecuteRecommendationRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// AnalysisResult is the API view of one completed (or failed) session.
type AnalysisResult struct {
	SessionID             uuid.UUID                   `json:"session_id"`
	UserID                uuid.UUID                   `json:"user_id"`
	Status                string                      `json:"status"`
	StartedAt             time.Time                   `json:"started_at"`
	CompletedAt           *time.Time                  `json:"completed_at,omitempty"`
	ProcessingTimeSeconds float64                     `json:"processing_time_seconds"`
	ErrorMessage          string                      `json:"error_message,omitempty"`
	Summary               *model.SessionSummary       `json:"summary,omitempty"`
	Recommendations       []model.SmartRecommendation `json:"recommendations,omitempty"`
}

// BatchAnalysisResult aggregates the per-user outcomes of a batch run.
type BatchAnalysisResult struct {
	TotalUsers   int              `json:"total_users"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	UniqueStocks int              `json:"unique_stocks"`
	Results      []AnalysisResult `json:"results"`
}

// TradeResult reports the outcome of executing one smart recommendation.
type TradeResult struct {
	Trade      *model.Trade `json:"trade,omitempty"`
	Executed   bool         `json:"executed"`
	Reason     string       `json:"reason,omitempty"`
	CashAfter  float64      `json:"cash_after"`
	TotalCost  float64      `json:"total_cost"`
	Commission float64      `json:"commission"`
}
