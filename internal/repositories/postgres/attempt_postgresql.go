package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.AttemptRecord, error) {
	var attempt models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Preload("Responses").
		Where("session_id = ?", sessionID).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	var attempts []*models.AttemptRecord
	var total int64

	query := a.db.WithContext(ctx).Model(&models.AttemptRecord{})
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("completed_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func (a AttemptPostgreSQL) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	var stats repositories.AttemptStats

	base := a.db.WithContext(ctx).Model(&models.AttemptRecord{}).Where("quiz_id = ?", quizID)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts == 0 {
		return &stats, nil
	}
	if err := base.Session(&gorm.Session{}).Where("passed = ?", true).Count(&stats.PassedAttempts).Error; err != nil {
		return nil, err
	}

	row := struct {
		Avg  float64
		Best float64
	}{}
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(AVG(percentage), 0) AS avg, COALESCE(MAX(percentage), 0) AS best").
		Scan(&row).Error; err != nil {
		return nil, err
	}
	stats.AveragePercentage = row.Avg
	stats.BestPercentage = row.Best
	return &stats, nil
}
