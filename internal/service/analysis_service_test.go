package service

import (
	"testing"

	"soultrader/config"
	"soultrader/internal/model"
	"soultrader/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTickerListService(watchlist []string) *analysisService {
	return &analysisService{
		cfg: &config.Config{
			Analysis: config.Analysis{Watchlist: watchlist},
		},
		log: logger.NewNop(),
	}
}

func TestBuildTickerList(t *testing.T) {
	tests := []struct {
		name      string
		symbols   []string
		watchlist []string
		holdings  map[string]model.Holding
		want      []string
	}{
		{
			name:    "request symbols come first",
			symbols: []string{"TSLA", "NVDA"},
			want:    []string{"TSLA", "NVDA"},
		},
		{
			name:      "watchlist fills in after request",
			symbols:   []string{"TSLA"},
			watchlist: []string{"AAPL", "MSFT"},
			want:      []string{"TSLA", "AAPL", "MSFT"},
		},
		{
			name:      "duplicates collapse case insensitively",
			symbols:   []string{"aapl", " AAPL ", "msft"},
			watchlist: []string{"AAPL"},
			want:      []string{"AAPL", "MSFT"},
		},
		{
			name:      "held positions always included",
			watchlist: []string{"AAPL"},
			holdings:  map[string]model.Holding{"NFLX": {}},
			want:      []string{"AAPL", "NFLX"},
		},
		{
			name:    "blank entries dropped",
			symbols: []string{"", "  ", "IBM"},
			want:    []string{"IBM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTickerListService(tt.watchlist)
			got := svc.buildTickerList(tt.symbols, tt.holdings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLockForIsPerUser(t *testing.T) {
	svc := newTickerListService(nil)
	alice := uuid.New()
	bob := uuid.New()

	lockA := svc.lockFor(alice)
	lockB := svc.lockFor(bob)

	assert.True(t, lockA.TryLock())
	// A held lock for one user does not block another.
	assert.True(t, lockB.TryLock())
	// Same user resolves to the same mutex.
	assert.False(t, svc.lockFor(alice).TryLock())

	lockA.Unlock()
	lockB.Unlock()
}

func TestToSmartRecommendationsSkipsUnsized(t *testing.T) {
	svc := newTickerListService(nil)
	session := &model.AnalysisSession{ID: uuid.New(), UserID: uuid.New()}

	candidates := []*Candidate{
		{
			Instrument:         model.Instrument{ID: uuid.New(), Symbol: "BUY"},
			RecommendationType: model.RecommendationBuy,
			SharesToBuy:        10,
			CashAllocated:      1000,
		},
		{
			Instrument:         model.Instrument{ID: uuid.New(), Symbol: "NONE"},
			RecommendationType: model.RecommendationBuy,
		},
		{
			Instrument:         model.Instrument{ID: uuid.New(), Symbol: "SELL"},
			RecommendationType: model.RecommendationSell,
			SharesToSell:       5,
		},
	}

	recs := svc.toSmartRecommendations(session, candidates)

	assert.Len(t, recs, 2)
	assert.Equal(t, "BUY", recs[0].Instrument.Symbol)
	assert.Equal(t, model.SmartRecommendationPending, recs[0].Status)
	assert.Equal(t, session.ID, recs[0].SessionID)
	assert.Equal(t, "SELL", recs[1].Instrument.Symbol)
}
