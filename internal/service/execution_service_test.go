package service

import (
	"context"
	"testing"
	"time"

	"soultrader/config"
	"soultrader/internal/model"
	"soultrader/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCalcCommission(t *testing.T) {
	tests := []struct {
		name        string
		totalAmount float64
		want        float64
	}{
		{name: "rate applies above the floor", totalAmount: 10_000, want: 10},
		{name: "floor on small trades", totalAmount: 500, want: 1},
		{name: "boundary amount", totalAmount: 1000, want: 1},
		{name: "just above boundary", totalAmount: 1001, want: 1.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calcCommission(tt.totalAmount), 0.0001)
		})
	}
}

func TestExecuteRecommendationValidation(t *testing.T) {
	// Validation runs before any repository work, so a bare service is
	// enough for these paths.
	svc := &executionService{
		cfg: &config.Config{
			Analysis: config.Analysis{RecommendationTTL: 7 * 24 * time.Hour},
		},
		log: logger.NewNop(),
	}
	userID := uuid.New()

	pendingBuy := func() *model.SmartRecommendation {
		return &model.SmartRecommendation{
			ID:                 uuid.New(),
			UserID:             userID,
			RecommendationType: model.RecommendationBuy,
			Status:             model.SmartRecommendationPending,
			SharesToBuy:        10,
			CurrentPrice:       100,
			CreatedAt:          time.Now(),
		}
	}

	tests := []struct {
		name    string
		rec     func() *model.SmartRecommendation
		userID  uuid.UUID
		wantErr error
	}{
		{
			name:    "nil recommendation",
			rec:     func() *model.SmartRecommendation { return nil },
			userID:  userID,
			wantErr: ErrNotFound,
		},
		{
			name: "already executed",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.Status = model.SmartRecommendationExecuted
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
		{
			name: "expired",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.Status = model.SmartRecommendationExpired
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
		{
			name: "pending but past the ttl horizon",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
		{
			name:    "wrong owner",
			rec:     pendingBuy,
			userID:  uuid.New(),
			wantErr: ErrNotFound,
		},
		{
			name: "buy with zero shares",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.SharesToBuy = 0
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
		{
			name: "sell with zero shares",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.RecommendationType = model.RecommendationSell
				r.SharesToBuy = 0
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
		{
			name: "hold is not executable",
			rec: func() *model.SmartRecommendation {
				r := pendingBuy()
				r.RecommendationType = model.RecommendationHold
				return r
			},
			userID:  userID,
			wantErr: ErrExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ExecuteRecommendation(context.Background(), tt.userID, tt.rec())
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
