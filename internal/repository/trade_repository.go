package repository

import (
	"context"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TradeRepository interface {
	GetByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int, opts ...utils.DBOption) ([]model.Trade, error)
	Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{
		db: db,
	}
}

func (r *tradeRepository) GetByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int, opts ...utils.DBOption) ([]model.Trade, error) {
	var trades []model.Trade
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	query := tx.Preload("Instrument").Where("portfolio_id = ?", portfolioID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&trades).Error; err != nil {
		return nil, err
	}

	return trades, nil
}

func (r *tradeRepository) Create(ctx context.Context, trade *model.Trade, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(trade).Error
}
