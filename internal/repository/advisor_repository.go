package repository

import (
	"context"
	"time"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdvisorRepository interface {
	GetActiveAdvisors(ctx context.Context, opts ...utils.DBOption) ([]model.Advisor, error)
	GetByType(ctx context.Context, advisorType string, opts ...utils.DBOption) (*model.Advisor, error)
	Create(ctx context.Context, advisor *model.Advisor, opts ...utils.DBOption) error
	MarkSuccess(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error
	MarkError(ctx context.Context, id uuid.UUID, errMsg string, opts ...utils.DBOption) error
}

type advisorRepository struct {
	db *gorm.DB
}

func NewAdvisorRepository(db *gorm.DB) AdvisorRepository {
	return &advisorRepository{
		db: db,
	}
}

func (r *advisorRepository) GetActiveAdvisors(ctx context.Context, opts ...utils.DBOption) ([]model.Advisor, error) {
	var advisors []model.Advisor
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("status = ?", model.AdvisorStatusActive).Order("weight DESC").Find(&advisors).Error; err != nil {
		return nil, err
	}

	return advisors, nil
}

func (r *advisorRepository) GetByType(ctx context.Context, advisorType string, opts ...utils.DBOption) (*model.Advisor, error) {
	var advisor model.Advisor
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("advisor_type = ?", advisorType).First(&advisor)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &advisor, nil
}

func (r *advisorRepository) Create(ctx context.Context, advisor *model.Advisor, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(advisor).Error
}

func (r *advisorRepository) MarkSuccess(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Advisor{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_success_at": time.Now(),
		"last_error":      "",
	}).Error
}

func (r *advisorRepository) MarkError(ctx context.Context, id uuid.UUID, errMsg string, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Advisor{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_error_at": time.Now(),
		"last_error":    errMsg,
	}).Error
}
