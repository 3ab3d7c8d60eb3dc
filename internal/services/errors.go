package services

import (
	"errors"

	apperrors "github.com/quizforge/attempt-service/internal/errors"
	"github.com/quizforge/attempt-service/internal/sampler"
	"github.com/quizforge/attempt-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Quiz definition errors
	ErrQuizNotFound = errors.New("quiz definition not found")

	// Question errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionInvalidType = errors.New("invalid question type")

	// Attempt errors
	ErrSessionNotFound         = errors.New("attempt session not found")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotActive        = errors.New("attempt is not active")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptNotGraded        = errors.New("attempt has not been graded yet")

	// Sampling errors, re-exported so handlers map them uniformly
	ErrNoQuestionsAvailable = sampler.ErrNoQuestionsAvailable
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict checks if error represents an invalid-state condition
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrAttemptNotGraded) ||
		errors.Is(err, session.ErrAlreadySubmitted) ||
		errors.Is(err, session.ErrNotStarted)
}

// IsValidationError checks if error represents a validation failure
func IsValidationError(err error) bool {
	var ve ValidationErrors
	var single *ValidationError
	return errors.Is(err, ErrValidationFailed) ||
		errors.As(err, &ve) ||
		errors.As(err, &single)
}
