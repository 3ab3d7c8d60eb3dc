package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/utils"
)

const (
	topicPoolKeyFormat = "questions:topic:%d"
	topicPoolTTL       = 5 * time.Minute
)

// CachedQuestionRepository is a cache-aside decorator over the question
// repository. Topic pools are read on every attempt start, so they are
// the hot path worth caching; writes invalidate the affected topic.
type CachedQuestionRepository struct {
	inner  repositories.QuestionRepository
	cache  CacheService
	logger utils.Logger
}

func NewCachedQuestionRepository(inner repositories.QuestionRepository, cache CacheService, logger utils.Logger) repositories.QuestionRepository {
	return &CachedQuestionRepository{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

func (c *CachedQuestionRepository) GetByTopic(ctx context.Context, topicID uint) ([]models.Question, error) {
	key := fmt.Sprintf(topicPoolKeyFormat, topicID)

	var cached []models.Question
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Degraded cache must not break reads.
		c.logger.WarnContext(ctx, "question cache read failed", "key", key, "error", err)
	}

	questions, err := c.inner.GetByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, questions, topicPoolTTL); err != nil {
		c.logger.WarnContext(ctx, "question cache write failed", "key", key, "error", err)
	}
	return questions, nil
}

func (c *CachedQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if err := c.inner.Create(ctx, question); err != nil {
		return err
	}
	c.invalidateTopic(ctx, question.TopicID)
	return nil
}

func (c *CachedQuestionRepository) Delete(ctx context.Context, id uint) error {
	question, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	if question != nil {
		c.invalidateTopic(ctx, question.TopicID)
	}
	return nil
}

func (c *CachedQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *CachedQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return c.inner.List(ctx, filters)
}

func (c *CachedQuestionRepository) invalidateTopic(ctx context.Context, topicID uint) {
	key := fmt.Sprintf(topicPoolKeyFormat, topicID)
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "question cache invalidation failed", "key", key, "error", err)
	}
}
