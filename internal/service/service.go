package service

import (
	"soultrader/config"
	"soultrader/internal/advisor"
	"soultrader/internal/repository"
	"soultrader/pkg/logger"
)

type Service struct {
	AccountService   AccountService
	CollectorService CollectorService
	ExecutionService ExecutionService
	AnalysisService  AnalysisService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	sources []advisor.Source,
) *Service {
	accountService := NewAccountService(cfg, log, repo.UserRepo, repo.PortfolioRepo, repo.RiskProfileRepo)
	collectorService := NewCollectorService(cfg, log, sources, repo.InstrumentRepo, repo.AdvisorRepo, repo.AdvisorRecommendationRepo, repo.MarketDataRepo)
	executionService := NewExecutionService(cfg, log, repo.PortfolioRepo, repo.TradeRepo, repo.SmartRecommendationRepo, repo.UnitOfWork)
	analysisService := NewAnalysisService(cfg, log, accountService, collectorService, executionService, repo.UserRepo, repo.AnalysisSessionRepo, repo.SmartRecommendationRepo, repo.AdvisorRecommendationRepo)
	schedulerService := NewSchedulerService(cfg, log, analysisService)

	return &Service{
		AccountService:   accountService,
		CollectorService: collectorService,
		ExecutionService: executionService,
		AnalysisService:  analysisService,
		SchedulerService: schedulerService,
	}
}
