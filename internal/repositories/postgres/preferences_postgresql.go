package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
)

// DefaultPreferences are the built-in defaults used until the learner
// saves their own.
func DefaultPreferences() *models.Preferences {
	return &models.Preferences{
		ShuffleQuestions: true,
		ShuffleOptions:   true,
		ShowAnswers:      models.ShowEndOfAttempt,
		PassingPercent:   60,
	}
}

type PreferencesPostgreSQL struct {
	db *gorm.DB
}

func NewPreferencesPostgreSQL(db *gorm.DB) repositories.PreferencesRepository {
	return &PreferencesPostgreSQL{db: db}
}

func (p PreferencesPostgreSQL) Get(ctx context.Context) (*models.Preferences, error) {
	var prefs models.Preferences
	if err := p.db.WithContext(ctx).Order("id asc").First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultPreferences(), nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (p PreferencesPostgreSQL) Update(ctx context.Context, prefs *models.Preferences) error {
	return p.db.WithContext(ctx).Save(prefs).Error
}
