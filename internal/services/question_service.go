package services

import (
	"context"
	"fmt"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/utils"
	"github.com/quizforge/attempt-service/internal/validator"
)

type questionService struct {
	questions repositories.QuestionRepository
	validator *validator.Validator
	logger    utils.Logger
}

func NewQuestionService(
	questions repositories.QuestionRepository,
	v *validator.Validator,
	logger utils.Logger,
) QuestionService {
	return &questionService{
		questions: questions,
		validator: v,
		logger:    logger,
	}
}

func (s *questionService) Create(ctx context.Context, question *models.Question) (*models.Question, error) {
	if err := s.validator.ValidateQuestion(question); err != nil {
		return nil, err
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.InfoContext(ctx, "Created question",
		"question_id", question.ID,
		"type", question.Type,
		"topic_id", question.TopicID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *questionService) GetByTopic(ctx context.Context, topicID uint) ([]models.Question, error) {
	return s.questions.GetByTopic(ctx, topicID)
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return s.questions.List(ctx, filters)
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return ErrQuestionNotFound
	}
	return s.questions.Delete(ctx, id)
}
