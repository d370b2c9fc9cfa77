package repository

import (
	"context"
	"time"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SmartRecommendationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.SmartRecommendation, error)
	GetBySession(ctx context.Context, sessionID uuid.UUID, opts ...utils.DBOption) ([]model.SmartRecommendation, error)
	GetPendingByUser(ctx context.Context, userID uuid.UUID, cutoff time.Time, opts ...utils.DBOption) ([]model.SmartRecommendation, error)
	CreateBatch(ctx context.Context, recs []model.SmartRecommendation, opts ...utils.DBOption) error
	MarkExecuted(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time, opts ...utils.DBOption) (int64, error)
}

type smartRecommendationRepository struct {
	db *gorm.DB
}

func NewSmartRecommendationRepository(db *gorm.DB) SmartRecommendationRepository {
	return &smartRecommendationRepository{
		db: db,
	}
}

func (r *smartRecommendationRepository) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.SmartRecommendation, error) {
	var rec model.SmartRecommendation
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Instrument").Where("id = ?", id).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &rec, nil
}

func (r *smartRecommendationRepository) GetBySession(ctx context.Context, sessionID uuid.UUID, opts ...utils.DBOption) ([]model.SmartRecommendation, error) {
	var recs []model.SmartRecommendation
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	err := tx.Preload("Instrument").
		Where("session_id = ?", sessionID).
		Order("priority_score DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// GetPendingByUser returns PENDING rows created at or after cutoff.
// Rows past the cutoff are implicitly expired even when the lazy sweep
// has not flipped their status yet.
func (r *smartRecommendationRepository) GetPendingByUser(ctx context.Context, userID uuid.UUID, cutoff time.Time, opts ...utils.DBOption) ([]model.SmartRecommendation, error) {
	var recs []model.SmartRecommendation
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	err := tx.Preload("Instrument").
		Where("user_id = ? AND status = ? AND created_at >= ?", userID, model.SmartRecommendationPending, cutoff).
		Order("priority_score DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	return recs, nil
}

func (r *smartRecommendationRepository) CreateBatch(ctx context.Context, recs []model.SmartRecommendation, opts ...utils.DBOption) error {
	if len(recs) == 0 {
		return nil
	}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(&recs).Error
}

func (r *smartRecommendationRepository) MarkExecuted(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.SmartRecommendation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      model.SmartRecommendationExecuted,
		"executed_at": time.Now(),
	}).Error
}

// ExpireOlderThan flips PENDING recommendations created before cutoff to
// EXPIRED. Runs lazily at the start of each analysis.
func (r *smartRecommendationRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time, opts ...utils.DBOption) (int64, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := tx.Model(&model.SmartRecommendation{}).
		Where("status = ? AND created_at < ?", model.SmartRecommendationPending, cutoff).
		Update("status", model.SmartRecommendationExpired)
	return result.RowsAffected, result.Error
}
