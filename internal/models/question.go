package models

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	FillBlank      QuestionType = "fill_blank"
	NumericInput   QuestionType = "numeric_input"
	Ordering       QuestionType = "ordering"
	Matching       QuestionType = "matching"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// Question is immutable within a session. The type tag selects which of
// the payload slices below is populated; the grader dispatches on it.
type Question struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TopicID     uint            `json:"topic_id" gorm:"not null;index"`
	Type        QuestionType    `json:"type" gorm:"not null;index" validate:"required,question_type"`
	Text        string          `json:"text" gorm:"type:text;not null" validate:"required"`
	Explanation *string         `json:"explanation" gorm:"type:text"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"default:Medium" validate:"omitempty,difficulty_level"`
	Points      int             `json:"points" gorm:"not null" validate:"required,min=1,max=100"`

	// Type-specific payloads
	Options []Option    `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Blanks  []Blank     `json:"blanks,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Numeric *NumericSpec `json:"numeric,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Pairs   []MatchPair `json:"pairs,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Option belongs to choice-type questions. IDs are unique within one question.
type Option struct {
	ID         string `json:"id" gorm:"primaryKey;size:64"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

// Blank belongs to fill-blank questions; Index is the 0-based position
// the learner's answer slice is matched against.
type Blank struct {
	ID                   uint     `json:"id" gorm:"primaryKey"`
	QuestionID           uint     `json:"question_id" gorm:"not null;index"`
	Index                int      `json:"index" gorm:"not null"`
	CorrectAnswer        string   `json:"correct_answer" gorm:"not null"`
	AcceptableAlternates []string `json:"acceptable_alternates,omitempty" gorm:"serializer:json"`
	IsNumeric            bool     `json:"is_numeric" gorm:"default:false"`
	Tolerance            *float64 `json:"tolerance,omitempty"`
	Unit                 *string  `json:"unit,omitempty"`
}

type NumericSpec struct {
	QuestionID    uint    `json:"question_id" gorm:"primaryKey"`
	CorrectAnswer float64 `json:"correct_answer" gorm:"not null"`
	Tolerance     float64 `json:"tolerance" gorm:"not null"`
	Unit          *string `json:"unit,omitempty"`
}

// OrderItem belongs to ordering questions. CorrectPosition is 1-indexed.
type OrderItem struct {
	ID              string `json:"id" gorm:"primaryKey;size:64"`
	QuestionID      uint   `json:"question_id" gorm:"not null;index"`
	Text            string `json:"text" gorm:"type:text;not null"`
	CorrectPosition int    `json:"correct_position" gorm:"not null"`
}

// MatchPair belongs to matching questions. The pair's ID is both the
// identity of the left entry and the only right-entry id that is
// correct for it; that bundling is the correctness oracle.
type MatchPair struct {
	ID         string `json:"id" gorm:"primaryKey;size:64"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	LeftItem   string `json:"left_item" gorm:"type:text;not null"`
	RightItem  string `json:"right_item" gorm:"type:text;not null"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs returns the ids of all options flagged correct.
func (q *Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// IsChoice reports whether the question carries an option list.
func (q *Question) IsChoice() bool {
	return q.Type == SingleChoice || q.Type == MultipleChoice
}
