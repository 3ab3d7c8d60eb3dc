package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AttemptStarted   EventType = "attempt.started"
	AttemptSubmitted EventType = "attempt.submitted"
	AttemptGraded    EventType = "attempt.graded"
)

// AttemptEvent is the envelope published for each attempt lifecycle
// transition. Payload carries the type-specific body.
type AttemptEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	QuizID    uint      `json:"quiz_id"`
	Payload   any       `json:"payload,omitempty"`
}

// StartedPayload accompanies attempt.started.
type StartedPayload struct {
	QuestionCount    int  `json:"question_count"`
	TimeLimitSeconds int  `json:"time_limit_seconds,omitempty"`
	Timed            bool `json:"timed"`
}

// SubmittedPayload accompanies attempt.submitted.
type SubmittedPayload struct {
	AnsweredCount  int  `json:"answered_count"`
	QuestionCount  int  `json:"question_count"`
	ElapsedSeconds int  `json:"elapsed_seconds"`
	TimedOut       bool `json:"timed_out"`
}

// GradedPayload accompanies attempt.graded.
type GradedPayload struct {
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

func NewAttemptEvent(eventType EventType, sessionID string, quizID uint, payload any) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "attempt-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		QuizID:    quizID,
		Payload:   payload,
	}
}
