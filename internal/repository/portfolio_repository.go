package repository

import (
	"context"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.Portfolio, error)
	Create(ctx context.Context, portfolio *model.Portfolio, opts ...utils.DBOption) error
	UpdateCapital(ctx context.Context, id uuid.UUID, capital float64, opts ...utils.DBOption) error
	GetHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID, opts ...utils.DBOption) (*model.Holding, error)
	SaveHolding(ctx context.Context, holding *model.Holding, opts ...utils.DBOption) error
	DeleteHolding(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{
		db: db,
	}
}

func (r *portfolioRepository) GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Holdings.Instrument").Where("user_id = ?", userID).First(&portfolio)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &portfolio, nil
}

func (r *portfolioRepository) Create(ctx context.Context, portfolio *model.Portfolio, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(portfolio).Error
}

func (r *portfolioRepository) UpdateCapital(ctx context.Context, id uuid.UUID, capital float64, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Portfolio{}).Where("id = ?", id).Update("current_capital", capital).Error
}

func (r *portfolioRepository) GetHolding(ctx context.Context, portfolioID, instrumentID uuid.UUID, opts ...utils.DBOption) (*model.Holding, error) {
	var holding model.Holding
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Instrument").
		Where("portfolio_id = ? AND instrument_id = ?", portfolioID, instrumentID).
		First(&holding)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &holding, nil
}

func (r *portfolioRepository) SaveHolding(ctx context.Context, holding *model.Holding, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(holding).Error
}

func (r *portfolioRepository) DeleteHolding(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Delete(&model.Holding{}, "id = ?", id).Error
}
