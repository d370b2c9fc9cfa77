package service

import (
	"context"
	"fmt"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/internal/repository"
	"soultrader/pkg/logger"

	"github.com/google/uuid"
)

const defaultInitialCapital = 100_000

// AccountService manages users and their portfolio and risk profile,
// creating defaults on first touch.
type AccountService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	GetOrCreatePortfolio(ctx context.Context, userID uuid.UUID) (*model.Portfolio, error)
	GetOrCreateRiskProfile(ctx context.Context, userID uuid.UUID) (*model.RiskProfile, error)
	UpdateRiskProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateRiskProfileRequest) (*model.RiskProfile, error)
}

type accountService struct {
	cfg             *config.Config
	log             *logger.Logger
	userRepo        repository.UserRepository
	portfolioRepo   repository.PortfolioRepository
	riskProfileRepo repository.RiskProfileRepository
}

func NewAccountService(
	cfg *config.Config,
	log *logger.Logger,
	userRepo repository.UserRepository,
	portfolioRepo repository.PortfolioRepository,
	riskProfileRepo repository.RiskProfileRepository,
) AccountService {
	return &accountService{
		cfg:             cfg,
		log:             log,
		userRepo:        userRepo,
		portfolioRepo:   portfolioRepo,
		riskProfileRepo: riskProfileRepo,
	}
}

// CreateUser registers a user and provisions the default portfolio and
// risk profile in the same call.
func (s *accountService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error) {
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.GetOrCreatePortfolio(ctx, user.ID); err != nil {
		return nil, err
	}
	if _, err := s.GetOrCreateRiskProfile(ctx, user.ID); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Created user",
		logger.StringField("user_id", user.ID.String()),
		logger.StringField("username", user.Username),
	)

	return user, nil
}

func (s *accountService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s not found", ErrNotFound, userID)
	}
	return user, nil
}

func (s *accountService) GetOrCreatePortfolio(ctx context.Context, userID uuid.UUID) (*model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	if portfolio != nil {
		return portfolio, nil
	}

	portfolio = &model.Portfolio{
		UserID:         userID,
		Name:           "Default Portfolio",
		InitialCapital: defaultInitialCapital,
		CurrentCapital: defaultInitialCapital,
	}
	if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create default portfolio: %w", err)
	}

	s.log.InfoContext(ctx, "Created default portfolio",
		logger.StringField("user_id", userID.String()),
	)

	return portfolio, nil
}

func (s *accountService) GetOrCreateRiskProfile(ctx context.Context, userID uuid.UUID) (*model.RiskProfile, error) {
	profile, err := s.riskProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get risk profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	profile = model.DefaultRiskProfile(userID)
	if err := s.riskProfileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create default risk profile: %w", err)
	}

	s.log.InfoContext(ctx, "Created default risk profile",
		logger.StringField("user_id", userID.String()),
	)

	return profile, nil
}

// UpdateRiskProfile applies a partial update to the user's risk profile,
// leaving nil fields untouched.
func (s *accountService) UpdateRiskProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateRiskProfileRequest) (*model.RiskProfile, error) {
	profile, err := s.GetOrCreateRiskProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.MaxPurchasePercentage != nil {
		profile.MaxPurchasePercentage = *req.MaxPurchasePercentage
	}
	if req.MinConfidenceScore != nil {
		profile.MinConfidenceScore = *req.MinConfidenceScore
	}
	if req.CashSpendPercentage != nil {
		profile.CashSpendPercentage = *req.CashSpendPercentage
	}
	if req.SellRecommendationWeight != nil {
		profile.SellRecommendationWeight = *req.SellRecommendationWeight
	}
	if req.SellHoldThreshold != nil {
		profile.SellHoldThreshold = *req.SellHoldThreshold
	}
	if req.ProfitTakingEnabled != nil {
		profile.ProfitTakingEnabled = *req.ProfitTakingEnabled
	}
	if req.ProfitTakingThreshold != nil {
		profile.ProfitTakingThreshold = *req.ProfitTakingThreshold
	}
	if req.VolatilityThreshold != nil {
		profile.VolatilityThreshold = *req.VolatilityThreshold
	}
	if req.MinStockPrice != nil {
		profile.MinStockPrice = *req.MinStockPrice
	}
	if req.MinMarketCap != nil {
		profile.MinMarketCap = *req.MinMarketCap
	}
	if req.AllowPennyStocks != nil {
		profile.AllowPennyStocks = *req.AllowPennyStocks
	}
	if req.AutoExecuteTrades != nil {
		profile.AutoExecuteTrades = *req.AutoExecuteTrades
	}

	if err := s.riskProfileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update risk profile: %w", err)
	}

	return profile, nil
}
