package repository

import (
	"soultrader/config"
	"soultrader/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo                  UserRepository
	InstrumentRepo            InstrumentRepository
	PortfolioRepo             PortfolioRepository
	RiskProfileRepo           RiskProfileRepository
	AdvisorRepo               AdvisorRepository
	AdvisorRecommendationRepo AdvisorRecommendationRepository
	AnalysisSessionRepo       AnalysisSessionRepository
	SmartRecommendationRepo   SmartRecommendationRepository
	TradeRepo                 TradeRepository
	MarketDataRepo            MarketDataRepository
	UnitOfWork                UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		UserRepo:                  NewUserRepository(db),
		InstrumentRepo:            NewInstrumentRepository(db),
		PortfolioRepo:             NewPortfolioRepository(db),
		RiskProfileRepo:           NewRiskProfileRepository(db),
		AdvisorRepo:               NewAdvisorRepository(db),
		AdvisorRecommendationRepo: NewAdvisorRecommendationRepository(db),
		AnalysisSessionRepo:       NewAnalysisSessionRepository(db),
		SmartRecommendationRepo:   NewSmartRecommendationRepository(db),
		TradeRepo:                 NewTradeRepository(db),
		MarketDataRepo:            NewMarketDataRepository(cfg, log),
		UnitOfWork:                NewUnitOfWork(db),
	}, nil
}
