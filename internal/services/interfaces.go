package services

import (
	"context"

	"github.com/quizforge/attempt-service/internal/grading"
	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/session"
)

// ===== REQUEST / RESPONSE DTOS =====

// StartAttemptRequest starts a session from a quiz definition.
type StartAttemptRequest struct {
	QuizID uint `json:"quiz_id" validate:"required"`
}

// AnswerSubmission carries the learner's answer for one question. The
// field matching the question's type is read; the rest are ignored.
type AnswerSubmission struct {
	SelectedOptions []string          `json:"selected_options,omitempty"`
	Values          []string          `json:"values,omitempty"`
	Value           string            `json:"value,omitempty"`
	Order           []string          `json:"order,omitempty"`
	Pairs           map[string]string `json:"pairs,omitempty"`
}

// NavigateRequest moves the session cursor.
type NavigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next previous goto"`
	Index  *int   `json:"index,omitempty"`
}

// OptionView is an option with its correctness withheld.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// OrderItemView is an ordering item with its correct slot withheld.
type OrderItemView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MatchEntryView is one side of a matching board. Left entries carry
// the pair id the learner answers with; right entries are shown in
// their shuffled display placement.
type MatchEntryView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the learner-facing projection of a question: no
// correct answers, no correctness flags.
type QuestionView struct {
	ID         uint                `json:"id"`
	Type       models.QuestionType `json:"type"`
	Text       string              `json:"text"`
	Points     int                 `json:"points"`
	BlankCount int                 `json:"blank_count,omitempty"`
	Unit       *string             `json:"unit,omitempty"`
	Options    []OptionView        `json:"options,omitempty"`
	Items      []OrderItemView     `json:"items,omitempty"`
	Left       []MatchEntryView    `json:"left,omitempty"`
	Right      []MatchEntryView    `json:"right,omitempty"`
}

// AttemptStateResponse is the live view of a session.
type AttemptStateResponse struct {
	SessionID            string        `json:"session_id"`
	QuizID               uint          `json:"quiz_id"`
	State                session.State `json:"state"`
	CurrentIndex         int           `json:"current_index"`
	QuestionCount        int           `json:"question_count"`
	AnsweredCount        int           `json:"answered_count"`
	TimeRemainingSeconds int           `json:"time_remaining_seconds"` // -1 when untimed
	CurrentQuestion      *QuestionView `json:"current_question,omitempty"`
}

// ResultResponse is the graded outcome of a finished session.
type ResultResponse struct {
	SessionID string          `json:"session_id"`
	QuizID    uint            `json:"quiz_id"`
	TimedOut  bool            `json:"timed_out"`
	Summary   grading.Summary `json:"summary"`
}

// ===== SERVICE INTERFACES =====

type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest) (*AttemptStateResponse, error)
	Answer(ctx context.Context, sessionID string, questionID uint, submission *AnswerSubmission) error
	Navigate(ctx context.Context, sessionID string, req *NavigateRequest) (*AttemptStateResponse, error)
	Submit(ctx context.Context, sessionID string) (*ResultResponse, error)
	GetState(ctx context.Context, sessionID string) (*AttemptStateResponse, error)
	GetResult(ctx context.Context, sessionID string) (*ResultResponse, error)
	ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error)
	GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error)
	// WaitForPersistence blocks until fire-and-forget attempt writes
	// have drained; called on shutdown.
	WaitForPersistence()
}

type QuizService interface {
	Create(ctx context.Context, quiz *models.QuizDefinition) (*models.QuizDefinition, error)
	GetByID(ctx context.Context, id uint) (*models.QuizDefinition, error)
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.QuizDefinition, int64, error)
	Delete(ctx context.Context, id uint) error
	GetPreferences(ctx context.Context) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error)
}

type QuestionService interface {
	Create(ctx context.Context, question *models.Question) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByTopic(ctx context.Context, topicID uint) ([]models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id uint) error
}

type ExportService interface {
	// ExportAttempt renders a graded attempt to an xlsx workbook and
	// returns the serialized bytes.
	ExportAttempt(ctx context.Context, sessionID string) ([]byte, error)
}
