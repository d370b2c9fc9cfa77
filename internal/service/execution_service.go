package service

import (
	"context"
	"fmt"
	"time"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/internal/repository"
	"soultrader/pkg/logger"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
)

const (
	commissionRate = 0.001
	minCommission  = 1.0
)

// ExecutionService fills smart recommendations against the paper
// portfolio: cash, holdings, trade log and recommendation status move
// in one transaction.
type ExecutionService interface {
	GetRecommendation(ctx context.Context, recID uuid.UUID) (*model.SmartRecommendation, error)
	ExecuteRecommendation(ctx context.Context, userID uuid.UUID, rec *model.SmartRecommendation) (*dto.TradeResult, error)
	GetTradeHistory(ctx context.Context, userID uuid.UUID, limit int) ([]model.Trade, error)
}

type executionService struct {
	cfg           *config.Config
	log           *logger.Logger
	portfolioRepo repository.PortfolioRepository
	tradeRepo     repository.TradeRepository
	smartRecRepo  repository.SmartRecommendationRepository
	uow           repository.UnitOfWork
}

func NewExecutionService(
	cfg *config.Config,
	log *logger.Logger,
	portfolioRepo repository.PortfolioRepository,
	tradeRepo repository.TradeRepository,
	smartRecRepo repository.SmartRecommendationRepository,
	uow repository.UnitOfWork,
) ExecutionService {
	return &executionService{
		cfg:           cfg,
		log:           log,
		portfolioRepo: portfolioRepo,
		tradeRepo:     tradeRepo,
		smartRecRepo:  smartRecRepo,
		uow:           uow,
	}
}

func (s *executionService) GetRecommendation(ctx context.Context, recID uuid.UUID) (*model.SmartRecommendation, error) {
	rec, err := s.smartRecRepo.GetByID(ctx, recID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: recommendation %s not found", ErrNotFound, recID)
	}
	return rec, nil
}

func (s *executionService) ExecuteRecommendation(ctx context.Context, userID uuid.UUID, rec *model.SmartRecommendation) (*dto.TradeResult, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: recommendation not found", ErrNotFound)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("%w: recommendation %s does not belong to user %s", ErrNotFound, rec.ID, userID)
	}
	if rec.Status != model.SmartRecommendationPending {
		return nil, fmt.Errorf("%w: recommendation %s is %s, not pending", ErrExecution, rec.ID, rec.Status)
	}
	// A pending row past the TTL is expired even if the lazy sweep has
	// not updated its status yet.
	if time.Since(rec.CreatedAt) > s.cfg.Analysis.RecommendationTTL {
		return nil, fmt.Errorf("%w: recommendation %s expired at %s", ErrExecution,
			rec.ID, rec.CreatedAt.Add(s.cfg.Analysis.RecommendationTTL).Format(time.RFC3339))
	}

	switch rec.RecommendationType {
	case model.RecommendationBuy:
		if rec.SharesToBuy <= 0 {
			return nil, fmt.Errorf("%w: buy recommendation has no shares to buy", ErrExecution)
		}
	case model.RecommendationSell:
		if rec.SharesToSell <= 0 {
			return nil, fmt.Errorf("%w: sell recommendation has no shares to sell", ErrExecution)
		}
	default:
		return nil, fmt.Errorf("%w: cannot execute %s recommendation", ErrExecution, rec.RecommendationType)
	}

	var result *dto.TradeResult
	err := s.uow.Run(func(opts ...utils.DBOption) error {
		portfolio, err := s.portfolioRepo.GetByUserID(ctx, userID, opts...)
		if err != nil {
			return fmt.Errorf("failed to load portfolio: %w", err)
		}
		if portfolio == nil {
			return fmt.Errorf("%w: user %s has no portfolio", ErrNotFound, userID)
		}

		if rec.RecommendationType == model.RecommendationBuy {
			result, err = s.executeBuy(ctx, portfolio, rec, opts...)
		} else {
			result, err = s.executeSell(ctx, portfolio, rec, opts...)
		}
		if err != nil {
			return err
		}

		if err := s.smartRecRepo.MarkExecuted(ctx, rec.ID, opts...); err != nil {
			return fmt.Errorf("failed to mark recommendation executed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Executed smart recommendation",
		logger.StringField("recommendation_id", rec.ID.String()),
		logger.StringField("type", rec.RecommendationType),
		logger.StringField("symbol", rec.Instrument.Symbol),
		logger.Float64Field("total_cost", result.TotalCost),
	)

	return result, nil
}

func (s *executionService) executeBuy(ctx context.Context, portfolio *model.Portfolio, rec *model.SmartRecommendation, opts ...utils.DBOption) (*dto.TradeResult, error) {
	price := rec.CurrentPrice
	if price <= 0 {
		return nil, fmt.Errorf("%w: no price available for %s", ErrExecution, rec.Instrument.Symbol)
	}

	totalAmount := float64(rec.SharesToBuy) * price
	commission := calcCommission(totalAmount)
	totalCost := totalAmount + commission

	if portfolio.CurrentCapital < totalCost {
		return nil, fmt.Errorf("%w: insufficient funds, required %.2f available %.2f",
			ErrExecution, totalCost, portfolio.CurrentCapital)
	}

	holding, err := s.portfolioRepo.GetHolding(ctx, portfolio.ID, rec.InstrumentID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}

	if holding == nil {
		holding = &model.Holding{
			PortfolioID:  portfolio.ID,
			InstrumentID: rec.InstrumentID,
			Quantity:     rec.SharesToBuy,
			AverageCost:  price,
		}
	} else {
		// Weighted average cost over old and new shares.
		totalShares := holding.Quantity + rec.SharesToBuy
		costBasis := float64(holding.Quantity)*holding.AverageCost + totalAmount
		holding.AverageCost = costBasis / float64(totalShares)
		holding.Quantity = totalShares
	}
	if err := s.portfolioRepo.SaveHolding(ctx, holding, opts...); err != nil {
		return nil, fmt.Errorf("failed to save holding: %w", err)
	}

	newCapital := portfolio.CurrentCapital - totalCost
	if err := s.portfolioRepo.UpdateCapital(ctx, portfolio.ID, newCapital, opts...); err != nil {
		return nil, fmt.Errorf("failed to update capital: %w", err)
	}

	trade := &model.Trade{
		PortfolioID:           portfolio.ID,
		InstrumentID:          rec.InstrumentID,
		SmartRecommendationID: &rec.ID,
		TradeType:             model.TradeTypeBuy,
		Quantity:              rec.SharesToBuy,
		Price:                 price,
		Commission:            commission,
		TotalAmount:           totalAmount,
		Status:                model.TradeStatusFilled,
		Source:                model.TradeSourceSmartAnalysis,
	}
	if err := s.tradeRepo.Create(ctx, trade, opts...); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	return &dto.TradeResult{
		Trade:      trade,
		Executed:   true,
		CashAfter:  newCapital,
		TotalCost:  totalCost,
		Commission: commission,
	}, nil
}

func (s *executionService) executeSell(ctx context.Context, portfolio *model.Portfolio, rec *model.SmartRecommendation, opts ...utils.DBOption) (*dto.TradeResult, error) {
	price := rec.CurrentPrice
	if price <= 0 {
		return nil, fmt.Errorf("%w: no price available for %s", ErrExecution, rec.Instrument.Symbol)
	}

	holding, err := s.portfolioRepo.GetHolding(ctx, portfolio.ID, rec.InstrumentID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}
	if holding == nil || holding.Quantity < rec.SharesToSell {
		owned := 0
		if holding != nil {
			owned = holding.Quantity
		}
		return nil, fmt.Errorf("%w: insufficient shares, available %d requested %d",
			ErrExecution, owned, rec.SharesToSell)
	}

	totalAmount := float64(rec.SharesToSell) * price
	commission := calcCommission(totalAmount)
	proceeds := totalAmount - commission

	holding.Quantity -= rec.SharesToSell
	if holding.Quantity <= 0 {
		if err := s.portfolioRepo.DeleteHolding(ctx, holding.ID, opts...); err != nil {
			return nil, fmt.Errorf("failed to delete holding: %w", err)
		}
	} else {
		if err := s.portfolioRepo.SaveHolding(ctx, holding, opts...); err != nil {
			return nil, fmt.Errorf("failed to save holding: %w", err)
		}
	}

	newCapital := portfolio.CurrentCapital + proceeds
	if err := s.portfolioRepo.UpdateCapital(ctx, portfolio.ID, newCapital, opts...); err != nil {
		return nil, fmt.Errorf("failed to update capital: %w", err)
	}

	trade := &model.Trade{
		PortfolioID:           portfolio.ID,
		InstrumentID:          rec.InstrumentID,
		SmartRecommendationID: &rec.ID,
		TradeType:             model.TradeTypeSell,
		Quantity:              rec.SharesToSell,
		Price:                 price,
		Commission:            commission,
		TotalAmount:           totalAmount,
		Status:                model.TradeStatusFilled,
		Source:                model.TradeSourceSmartAnalysis,
	}
	if err := s.tradeRepo.Create(ctx, trade, opts...); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	return &dto.TradeResult{
		Trade:      trade,
		Executed:   true,
		CashAfter:  newCapital,
		TotalCost:  proceeds,
		Commission: commission,
	}, nil
}

// GetTradeHistory returns the user's filled trades, newest first.
func (s *executionService) GetTradeHistory(ctx context.Context, userID uuid.UUID, limit int) ([]model.Trade, error) {
	portfolio, err := s.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	if portfolio == nil {
		return nil, fmt.Errorf("%w: user %s has no portfolio", ErrNotFound, userID)
	}
	return s.tradeRepo.GetByPortfolio(ctx, portfolio.ID, limit)
}

func calcCommission(totalAmount float64) float64 {
	commission := totalAmount * commissionRate
	if commission < minCommission {
		return minCommission
	}
	return commission
}
