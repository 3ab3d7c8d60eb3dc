package services

import (
	"context"
	"fmt"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/utils"
	"github.com/quizforge/attempt-service/internal/validator"
)

type quizService struct {
	quizzes     repositories.QuizRepository
	preferences repositories.PreferencesRepository
	validator   *validator.Validator
	logger      utils.Logger
}

func NewQuizService(
	quizzes repositories.QuizRepository,
	preferences repositories.PreferencesRepository,
	v *validator.Validator,
	logger utils.Logger,
) QuizService {
	return &quizService{
		quizzes:     quizzes,
		preferences: preferences,
		validator:   v,
		logger:      logger,
	}
}

// Create stores a quiz definition, filling unset settings from the
// learner's preferences first.
func (s *quizService) Create(ctx context.Context, quiz *models.QuizDefinition) (*models.QuizDefinition, error) {
	prefs, err := s.preferences.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	applyPreferenceDefaults(quiz, prefs)

	if err := s.validator.ValidateStruct(quiz); err != nil {
		return nil, validator.ToValidationErrors(err)
	}
	if errs := validateQuotas(quiz); len(errs) > 0 {
		return nil, errs
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz definition: %w", err)
	}

	s.logger.InfoContext(ctx, "Created quiz definition",
		"quiz_id", quiz.ID,
		"exam", quiz.IsExam(),
		"question_count", quiz.QuestionCount)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.QuizDefinition, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz definition: %w", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.QuizDefinition, int64, error) {
	return s.quizzes.List(ctx, filters)
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get quiz definition: %w", err)
	}
	if quiz == nil {
		return ErrQuizNotFound
	}
	return s.quizzes.Delete(ctx, id)
}

func (s *quizService) GetPreferences(ctx context.Context) (*models.Preferences, error) {
	return s.preferences.Get(ctx)
}

func (s *quizService) UpdatePreferences(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	if prefs.PassingPercent < 0 || prefs.PassingPercent > 100 {
		return nil, NewValidationError("passing_percent", "must be between 0 and 100", prefs.PassingPercent)
	}
	if prefs.TimeLimitMinutes != nil && (*prefs.TimeLimitMinutes < 1 || *prefs.TimeLimitMinutes > 300) {
		return nil, NewValidationError("time_limit_minutes", "must be between 1 and 300", *prefs.TimeLimitMinutes)
	}
	if prefs.ShowAnswers == "" {
		prefs.ShowAnswers = models.ShowEndOfAttempt
	}
	if err := s.preferences.Update(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

// applyPreferenceDefaults fills settings the request left at their zero
// values. Shuffle flags are deliberate booleans on the request, so only
// genuinely optional settings inherit.
func applyPreferenceDefaults(quiz *models.QuizDefinition, prefs *models.Preferences) {
	if quiz.TimeLimitMinutes == nil && prefs.TimeLimitMinutes != nil {
		limit := *prefs.TimeLimitMinutes
		quiz.TimeLimitMinutes = &limit
	}
	if quiz.ShowAnswers == "" {
		quiz.ShowAnswers = prefs.ShowAnswers
	}
	if quiz.PassingPercent == 0 {
		quiz.PassingPercent = prefs.PassingPercent
	}
}

// validateQuotas checks the exam quota list when present: a quiz draws
// from a single topic, an exam from at least one quota, never both.
func validateQuotas(quiz *models.QuizDefinition) ValidationErrors {
	var errs ValidationErrors
	if !quiz.IsExam() {
		if quiz.TopicID == 0 {
			errs = append(errs, *NewValidationError("topic_id", "is required for a single-topic quiz", nil))
		}
		return errs
	}

	if quiz.TopicID != 0 {
		errs = append(errs, *NewValidationError("topic_id", "must be unset when quotas are given", quiz.TopicID))
	}
	total := 0
	seen := make(map[uint]bool, len(quiz.Quotas))
	for _, quota := range quiz.Quotas {
		if quota.TopicID == 0 {
			errs = append(errs, *NewValidationError("quotas", "quota topic id is required", nil))
			continue
		}
		if seen[quota.TopicID] {
			errs = append(errs, *NewValidationError("quotas", "duplicate topic in quotas", quota.TopicID))
		}
		seen[quota.TopicID] = true
		if quota.QuestionCount < 1 {
			errs = append(errs, *NewValidationError("quotas", "quota question count must be positive", quota.QuestionCount))
		}
		total += quota.QuestionCount
	}
	if total != quiz.QuestionCount {
		errs = append(errs, *NewValidationError("question_count", "must equal the sum of quota counts", quiz.QuestionCount))
	}
	return errs
}
