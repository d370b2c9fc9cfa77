package repository

import (
	"context"
	"time"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdvisorRecommendationRepository interface {
	GetFreshByInstrument(ctx context.Context, instrumentID uuid.UUID, since time.Time, opts ...utils.DBOption) ([]model.AdvisorRecommendation, error)
	Create(ctx context.Context, rec *model.AdvisorRecommendation, opts ...utils.DBOption) error
	CreateBatch(ctx context.Context, recs []model.AdvisorRecommendation, opts ...utils.DBOption) error
	DeleteExpired(ctx context.Context, before time.Time, opts ...utils.DBOption) (int64, error)
}

type advisorRecommendationRepository struct {
	db *gorm.DB
}

func NewAdvisorRecommendationRepository(db *gorm.DB) AdvisorRecommendationRepository {
	return &advisorRecommendationRepository{
		db: db,
	}
}

// GetFreshByInstrument returns the latest recommendation per advisor for
// the instrument, restricted to rows created at or after since and not
// yet expired.
func (r *advisorRecommendationRepository) GetFreshByInstrument(ctx context.Context, instrumentID uuid.UUID, since time.Time, opts ...utils.DBOption) ([]model.AdvisorRecommendation, error) {
	var recs []model.AdvisorRecommendation
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	err := tx.Preload("Advisor").
		Where("instrument_id = ? AND created_at >= ? AND expires_at > ?", instrumentID, since, time.Now()).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	// Keep only the newest row per advisor.
	seen := make(map[uuid.UUID]bool, len(recs))
	latest := make([]model.AdvisorRecommendation, 0, len(recs))
	for _, rec := range recs {
		if seen[rec.AdvisorID] {
			continue
		}
		seen[rec.AdvisorID] = true
		latest = append(latest, rec)
	}

	return latest, nil
}

func (r *advisorRecommendationRepository) Create(ctx context.Context, rec *model.AdvisorRecommendation, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(rec).Error
}

func (r *advisorRecommendationRepository) CreateBatch(ctx context.Context, recs []model.AdvisorRecommendation, opts ...utils.DBOption) error {
	if len(recs) == 0 {
		return nil
	}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(&recs).Error
}

func (r *advisorRecommendationRepository) DeleteExpired(ctx context.Context, before time.Time, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Where("expires_at <= ?", before).Delete(&model.AdvisorRecommendation{})
	return result.RowsAffected, result.Error
}
