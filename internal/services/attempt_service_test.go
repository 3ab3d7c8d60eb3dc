package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/attempt-service/internal/events"
	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/sampler"
	"github.com/quizforge/attempt-service/internal/utils"
)

// ===== MOCKS =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByTopic(ctx context.Context, topicID uint) ([]models.Question, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	return nil, 0, args.Error(2)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.QuizDefinition) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.QuizDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizDefinition), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.QuizDefinition, int64, error) {
	args := m.Called(ctx, filters)
	return nil, 0, args.Error(2)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.AttemptRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptRecord), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	args := m.Called(ctx, filters)
	return nil, 0, args.Error(2)
}

func (m *MockAttemptRepository) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.AttemptStats), args.Error(1)
}

// ===== FIXTURES =====

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func topicPool(topicID uint, n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:      uint(int(topicID)*100 + i + 1),
			TopicID: topicID,
			Type:    models.SingleChoice,
			Text:    "q",
			Points:  1,
			Options: []models.Option{
				{ID: "right", Text: "right", IsCorrect: true},
				{ID: "wrong", Text: "wrong"},
			},
		}
	}
	return qs
}

func quizDef(id uint) *models.QuizDefinition {
	return &models.QuizDefinition{
		ID:             id,
		Name:           "Basics",
		TopicID:        1,
		QuestionCount:  3,
		ShowAnswers:    models.ShowEndOfAttempt,
		PassingPercent: 60,
	}
}

type testEnv struct {
	questions *MockQuestionRepository
	quizzes   *MockQuizRepository
	attempts  *MockAttemptRepository
	publisher *events.MockEventPublisher
	service   AttemptService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		questions: new(MockQuestionRepository),
		quizzes:   new(MockQuizRepository),
		attempts:  new(MockAttemptRepository),
		publisher: events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))),
	}
	env.service = NewAttemptService(
		env.questions, env.quizzes, env.attempts,
		sampler.New(nil), env.publisher, testLogger())
	return env
}

// ===== TESTS =====

func TestStart(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 10), nil)

	state, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, uint(1), state.QuizID)
	assert.Equal(t, 3, state.QuestionCount)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, -1, state.TimeRemainingSeconds)
	require.NotNil(t, state.CurrentQuestion)
	require.Len(t, state.CurrentQuestion.Options, 2)

	require.Len(t, env.publisher.GetPublishedEvents(), 1)
	assert.Equal(t, events.AttemptStarted, env.publisher.GetPublishedEvents()[0].Type)
}

func TestStart_QuizNotFound(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(9)).Return(nil, nil)

	_, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 9})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestStart_EmptyPool(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return([]models.Question{}, nil)

	_, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 1})
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
}

func TestStart_PoolSmallerThanRequest(t *testing.T) {
	env := newTestEnv()
	def := quizDef(1)
	def.QuestionCount = 10
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(def, nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 5), nil)

	state, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, state.QuestionCount, "oversized request truncates, no error")
}

func TestStart_ExamDrawsPerQuota(t *testing.T) {
	env := newTestEnv()
	def := &models.QuizDefinition{
		ID:            2,
		Name:          "Midterm",
		QuestionCount: 5,
		Quotas: []models.TopicQuota{
			{TopicID: 1, QuestionCount: 2, Position: 0},
			{TopicID: 2, QuestionCount: 3, Position: 1},
		},
		ShowAnswers:    models.ShowEndOfAttempt,
		PassingPercent: 50,
	}
	env.quizzes.On("GetByID", mock.Anything, uint(2)).Return(def, nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 4), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(2)).Return(topicPool(2, 4), nil)

	state, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, state.QuestionCount)
	env.questions.AssertNumberOfCalls(t, "GetByTopic", 2)
}

func TestAnswerAndSubmit_FullFlow(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 3), nil)
	env.attempts.On("Create", mock.Anything, mock.AnythingOfType("*models.AttemptRecord")).Return(nil)

	ctx := context.Background()
	state, err := env.service.Start(ctx, &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)
	sessionID := state.SessionID

	// Answer two of three correctly, one wrong.
	ids := []uint{101, 102, 103}
	require.NoError(t, env.service.Answer(ctx, sessionID, ids[0], &AnswerSubmission{SelectedOptions: []string{"right"}}))
	require.NoError(t, env.service.Answer(ctx, sessionID, ids[1], &AnswerSubmission{SelectedOptions: []string{"right"}}))
	require.NoError(t, env.service.Answer(ctx, sessionID, ids[2], &AnswerSubmission{SelectedOptions: []string{"wrong"}}))

	result, err := env.service.Submit(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, 2.0, result.Summary.Score)
	assert.Equal(t, 3.0, result.Summary.MaxScore)
	assert.Equal(t, 2, result.Summary.CorrectCount)
	assert.True(t, result.Summary.Passed, "66.7% rounds to 67, above the 60% threshold")
	require.Len(t, result.Summary.Breakdown, 3)

	// Exactly one record regardless of how submission was triggered.
	env.service.(*attemptService).WaitForPersistence()
	env.attempts.AssertNumberOfCalls(t, "Create", 1)

	created := env.attempts.Calls[0].Arguments.Get(1).(*models.AttemptRecord)
	assert.Equal(t, sessionID, created.SessionID)
	assert.Equal(t, 2.0, created.Score)
	assert.Equal(t, models.AttemptSubmitted, created.Status)
	assert.Len(t, created.Responses, 3)

	// started, submitted, graded
	eventTypes := make([]events.EventType, 0)
	for _, e := range env.publisher.GetPublishedEvents() {
		eventTypes = append(eventTypes, e.Type)
	}
	assert.Equal(t, []events.EventType{events.AttemptStarted, events.AttemptSubmitted, events.AttemptGraded}, eventTypes)
}

func TestSubmit_RepeatReturnsGradedResult(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 3), nil)
	env.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	ctx := context.Background()
	state, err := env.service.Start(ctx, &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)

	first, err := env.service.Submit(ctx, state.SessionID)
	require.NoError(t, err)

	// A double-click, or a manual submit that lost to timer expiry,
	// still delivers the graded result instead of an error.
	second, err := env.service.Submit(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)

	env.service.(*attemptService).WaitForPersistence()
	env.attempts.AssertNumberOfCalls(t, "Create", 1)
}

func TestAnswerAfterSubmit_DroppedWithoutRegrading(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 3), nil)
	env.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	ctx := context.Background()
	state, err := env.service.Start(ctx, &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)
	sessionID := state.SessionID

	require.NoError(t, env.service.Answer(ctx, sessionID, 101, &AnswerSubmission{SelectedOptions: []string{"wrong"}}))
	result, err := env.service.Submit(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Summary.Score)

	// A stray answer event after submission is a no-op, not an error,
	// and it never reaches the grader.
	err = env.service.Answer(ctx, sessionID, 101, &AnswerSubmission{SelectedOptions: []string{"right"}})
	require.NoError(t, err)

	again, err := env.service.GetResult(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, again.Summary.Score)
}

func TestNavigate(t *testing.T) {
	env := newTestEnv()
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(quizDef(1), nil)
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(topicPool(1, 3), nil)

	ctx := context.Background()
	state, err := env.service.Start(ctx, &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)

	state, err = env.service.Navigate(ctx, state.SessionID, &NavigateRequest{Action: "next"})
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)

	idx := 0
	state, err = env.service.Navigate(ctx, state.SessionID, &NavigateRequest{Action: "goto", Index: &idx})
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)

	// Clamped: previous at the first question stays put.
	state, err = env.service.Navigate(ctx, state.SessionID, &NavigateRequest{Action: "previous"})
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)

	_, err = env.service.Navigate(ctx, state.SessionID, &NavigateRequest{Action: "sideways"})
	assert.Error(t, err)
}

func TestGetResult_UnknownSessionFallsBackToStore(t *testing.T) {
	env := newTestEnv()
	record := &models.AttemptRecord{
		SessionID:      "old-session",
		QuizID:         4,
		Score:          5,
		MaxScore:       10,
		Percentage:     50,
		Passed:         false,
		Status:         models.AttemptTimedOut,
		ElapsedSeconds: 300,
		CompletedAt:    time.Now(),
		Responses: []models.AttemptResponse{
			{QuestionID: 1, QuestionType: models.SingleChoice, Earned: 5, Max: 5, FullCredit: true},
			{QuestionID: 2, QuestionType: models.Matching, Earned: 0, Max: 5},
		},
	}
	env.attempts.On("GetBySessionID", mock.Anything, "old-session").Return(record, nil)

	result, err := env.service.GetResult(context.Background(), "old-session")
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Summary.Percentage)
	assert.Equal(t, 1, result.Summary.CorrectCount)
	assert.True(t, result.TimedOut)
	assert.Len(t, result.Summary.Breakdown, 2)
}

func TestGetResult_MissingEverywhere(t *testing.T) {
	env := newTestEnv()
	env.attempts.On("GetBySessionID", mock.Anything, "nope").Return(nil, nil)

	_, err := env.service.GetResult(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetState_UnknownSession(t *testing.T) {
	env := newTestEnv()
	_, err := env.service.GetState(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuestionView_NeverLeaksAnswers(t *testing.T) {
	env := newTestEnv()
	def := quizDef(1)
	def.QuestionCount = 1
	env.quizzes.On("GetByID", mock.Anything, uint(1)).Return(def, nil)

	tol := 0.5
	pool := []models.Question{
		{
			ID: 1, TopicID: 1, Type: models.FillBlank, Text: "fill", Points: 2,
			Blanks: []models.Blank{
				{Index: 0, CorrectAnswer: "secret", Tolerance: &tol},
				{Index: 1, CorrectAnswer: "hidden"},
			},
		},
	}
	env.questions.On("GetByTopic", mock.Anything, uint(1)).Return(pool, nil)

	state, err := env.service.Start(context.Background(), &StartAttemptRequest{QuizID: 1})
	require.NoError(t, err)

	view := state.CurrentQuestion
	require.NotNil(t, view)
	assert.Equal(t, 2, view.BlankCount)
	assert.Empty(t, view.Options)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.Left)
}
