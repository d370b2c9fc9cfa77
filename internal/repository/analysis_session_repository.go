package repository

import (
	"context"
	"time"

	"soultrader/internal/model"
	"soultrader/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalysisSessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.AnalysisSession, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID, limit int, opts ...utils.DBOption) ([]model.AnalysisSession, error)
	Create(ctx context.Context, session *model.AnalysisSession, opts ...utils.DBOption) error
	Complete(ctx context.Context, id uuid.UUID, summary datatypes.JSON, processingSeconds float64, opts ...utils.DBOption) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string, processingSeconds float64, opts ...utils.DBOption) error
}

type analysisSessionRepository struct {
	db *gorm.DB
}

func NewAnalysisSessionRepository(db *gorm.DB) AnalysisSessionRepository {
	return &analysisSessionRepository{
		db: db,
	}
}

func (r *analysisSessionRepository) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.AnalysisSession, error) {
	var session model.AnalysisSession
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ?", id).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &session, nil
}

func (r *analysisSessionRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID, limit int, opts ...utils.DBOption) ([]model.AnalysisSession, error) {
	var sessions []model.AnalysisSession
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	query := tx.Where("user_id = ?", userID).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *analysisSessionRepository) Create(ctx context.Context, session *model.AnalysisSession, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(session).Error
}

func (r *analysisSessionRepository) Complete(ctx context.Context, id uuid.UUID, summary datatypes.JSON, processingSeconds float64, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.AnalysisSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":                  model.SessionStatusCompleted,
		"completed_at":            time.Now(),
		"processing_time_seconds": processingSeconds,
		"summary":                 summary,
	}).Error
}

func (r *analysisSessionRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string, processingSeconds float64, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.AnalysisSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":                  model.SessionStatusFailed,
		"completed_at":            time.Now(),
		"processing_time_seconds": processingSeconds,
		"error_message":           errMsg,
	}).Error
}
