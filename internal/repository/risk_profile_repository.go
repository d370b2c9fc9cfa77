package repository

import (
	"context"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RiskProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.RiskProfile, error)
	Create(ctx context.Context, profile *model.RiskProfile, opts ...utils.DBOption) error
	Update(ctx context.Context, profile *model.RiskProfile, opts ...utils.DBOption) error
}

type riskProfileRepository struct {
	db *gorm.DB
}

func NewRiskProfileRepository(db *gorm.DB) RiskProfileRepository {
	return &riskProfileRepository{
		db: db,
	}
}

func (r *riskProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.RiskProfile, error) {
	var profile model.RiskProfile
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &profile, nil
}

func (r *riskProfileRepository) Create(ctx context.Context, profile *model.RiskProfile, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(profile).Error
}

func (r *riskProfileRepository) Update(ctx context.Context, profile *model.RiskProfile, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(profile).Error
}
