package repository

import (
	"context"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstrumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.Instrument, error)
	GetBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Instrument, error)
	Upsert(ctx context.Context, instrument *model.Instrument, opts ...utils.DBOption) error
}

type instrumentRepository struct {
	db *gorm.DB
}

func NewInstrumentRepository(db *gorm.DB) InstrumentRepository {
	return &instrumentRepository{
		db: db,
	}
}

func (r *instrumentRepository) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.Instrument, error) {
	var instrument model.Instrument
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ?", id).First(&instrument)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &instrument, nil
}

func (r *instrumentRepository) GetBySymbol(ctx context.Context, symbol string, opts ...utils.DBOption) (*model.Instrument, error) {
	var instrument model.Instrument
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("symbol = ?", symbol).First(&instrument)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &instrument, nil
}

func (r *instrumentRepository) Upsert(ctx context.Context, instrument *model.Instrument, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "exchange", "sector", "current_price", "market_cap", "price_as_of", "updated_at",
		}),
	}).Create(instrument).Error
}
