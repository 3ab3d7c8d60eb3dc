package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptStatus records how a finished attempt ended. Live sessions are
// never persisted, so there is no in-progress status.
type AttemptStatus string

const (
	AttemptSubmitted AttemptStatus = "Submitted"
	AttemptTimedOut  AttemptStatus = "TimedOut"
)

// AttemptRecord is the persisted outcome of one session. It is written
// exactly once after grading and never updated afterwards.
type AttemptRecord struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"not null;uniqueIndex;size:36"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index"`

	Score      float64       `json:"score" gorm:"not null"`
	MaxScore   float64       `json:"max_score" gorm:"not null"`
	Percentage float64       `json:"percentage" gorm:"not null"` // stored unrounded
	Passed     bool          `json:"passed" gorm:"not null"`
	Status     AttemptStatus `json:"status" gorm:"not null;size:16"`

	ElapsedSeconds int       `json:"elapsed_seconds" gorm:"not null"`
	CompletedAt    time.Time `json:"completed_at" gorm:"not null"`

	Responses []AttemptResponse `json:"responses,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// AttemptResponse is one graded question within an attempt. The raw
// answer payload is kept as JSON for later review and export.
type AttemptResponse struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null"`

	QuestionType QuestionType   `json:"question_type" gorm:"not null"`
	Answer       datatypes.JSON `json:"answer,omitempty" gorm:"type:jsonb"`
	Earned       float64        `json:"earned" gorm:"not null"`
	Max          float64        `json:"max" gorm:"not null"`
	FullCredit   bool           `json:"full_credit" gorm:"not null"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}

func (AttemptResponse) TableName() string {
	return "attempt_responses"
}
