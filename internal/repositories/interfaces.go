package repositories

import (
	"context"
	"time"

	"github.com/quizforge/attempt-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	TopicID    *uint                   `json:"topic_id"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "points"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type QuizFilters struct {
	TopicID   *uint      `json:"topic_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type AttemptFilters struct {
	QuizID   *uint      `json:"quiz_id"`
	Passed   *bool      `json:"passed"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type AttemptStats struct {
	TotalAttempts     int64   `json:"total_attempts"`
	PassedAttempts    int64   `json:"passed_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
	BestPercentage    float64 `json:"best_percentage"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// GetByTopic loads the full question pool of a topic including all
	// type-specific child rows; sampling draws from this.
	GetByTopic(ctx context.Context, topicID uint) ([]models.Question, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id uint) error
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.QuizDefinition) error
	GetByID(ctx context.Context, id uint) (*models.QuizDefinition, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.QuizDefinition, int64, error)
	Delete(ctx context.Context, id uint) error
}

type AttemptRepository interface {
	// Create persists a finished attempt with its response rows. Records
	// are write-once.
	Create(ctx context.Context, attempt *models.AttemptRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.AttemptRecord, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.AttemptRecord, int64, error)
	GetStats(ctx context.Context, quizID uint) (*AttemptStats, error)
}

type PreferencesRepository interface {
	// Get returns the stored defaults, or the built-in defaults when no
	// row exists yet.
	Get(ctx context.Context) (*models.Preferences, error)
	Update(ctx context.Context, prefs *models.Preferences) error
}
