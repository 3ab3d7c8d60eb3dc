package models

import (
	"time"

	"gorm.io/gorm"
)

type ShowAnswersPolicy string

const (
	ShowEachQuestion ShowAnswersPolicy = "each_question"
	ShowEndOfAttempt ShowAnswersPolicy = "end_of_attempt"
	ShowNever        ShowAnswersPolicy = "never"
)

// QuizDefinition configures an assessment. A quiz draws from a single
// topic; an exam draws from several topic quotas instead (TopicID is
// then zero and Quotas is populated).
type QuizDefinition struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	TopicID       uint         `json:"topic_id" gorm:"index"`
	Quotas        []TopicQuota `json:"quotas,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	QuestionCount int          `json:"question_count" gorm:"not null" validate:"required,min=1"`

	TimeLimitMinutes *int              `json:"time_limit_minutes" validate:"omitempty,min=1,max=300"`
	ShuffleQuestions bool              `json:"shuffle_questions" gorm:"default:false"`
	ShuffleOptions   bool              `json:"shuffle_options" gorm:"default:false"`
	ShowAnswers      ShowAnswersPolicy `json:"show_answers" gorm:"default:end_of_attempt" validate:"omitempty,show_answers_policy"`
	PassingPercent   int               `json:"passing_percent" gorm:"not null" validate:"min=0,max=100"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TopicQuota is one per-topic draw instruction for an exam.
type TopicQuota struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	QuizID        uint `json:"quiz_id" gorm:"not null;index"`
	TopicID       uint `json:"topic_id" gorm:"not null"`
	QuestionCount int  `json:"question_count" gorm:"not null" validate:"required,min=1"`
	Position      int  `json:"position" gorm:"not null"` // quota-declaration order
}

func (QuizDefinition) TableName() string {
	return "quiz_definitions"
}

// IsExam reports whether the definition samples from per-topic quotas
// rather than a single topic pool.
func (d *QuizDefinition) IsExam() bool {
	return len(d.Quotas) > 0
}

// Preferences holds learner defaults applied when a new quiz
// definition is created. Consumed, never mutated, by the attempt core.
type Preferences struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	TimeLimitMinutes *int              `json:"time_limit_minutes"`
	ShuffleQuestions bool              `json:"shuffle_questions" gorm:"default:true"`
	ShuffleOptions   bool              `json:"shuffle_options" gorm:"default:true"`
	ShowAnswers      ShowAnswersPolicy `json:"show_answers" gorm:"default:end_of_attempt"`
	PassingPercent   int               `json:"passing_percent" gorm:"default:60"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (Preferences) TableName() string {
	return "preferences"
}
