package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/quizforge/attempt-service/internal/events"
	"github.com/quizforge/attempt-service/internal/grading"
	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/sampler"
	"github.com/quizforge/attempt-service/internal/session"
	"github.com/quizforge/attempt-service/internal/utils"
)

type attemptService struct {
	questions   repositories.QuestionRepository
	quizzes     repositories.QuizRepository
	attempts    repositories.AttemptRepository
	sampler     *sampler.Sampler
	grader      *grading.Grader
	aggregator  *grading.Aggregator
	publisher   events.EventPublisher
	logger      utils.Logger
	persistWait *sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*session.Controller
	results  map[string]*ResultResponse
}

func NewAttemptService(
	questions repositories.QuestionRepository,
	quizzes repositories.QuizRepository,
	attempts repositories.AttemptRepository,
	smp *sampler.Sampler,
	publisher events.EventPublisher,
	logger utils.Logger,
) AttemptService {
	return &attemptService{
		questions:   questions,
		quizzes:     quizzes,
		attempts:    attempts,
		sampler:     smp,
		grader:      grading.NewGrader(),
		aggregator:  grading.NewAggregator(),
		publisher:   publisher,
		logger:      logger,
		persistWait: &sync.WaitGroup{},
		sessions:    make(map[string]*session.Controller),
		results:     make(map[string]*ResultResponse),
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest) (*AttemptStateResponse, error) {
	s.logger.InfoContext(ctx, "Starting attempt", "quiz_id", req.QuizID)

	quiz, err := s.quizzes.GetByID(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz definition: %w", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	pools, err := s.buildPools(ctx, quiz)
	if err != nil {
		return nil, err
	}

	questions, err := s.sampler.Sample(pools, sampler.Options{
		ShuffleQuestions: quiz.ShuffleQuestions,
		ShuffleOptions:   quiz.ShuffleOptions,
	})
	if err != nil {
		return nil, err
	}

	var timeLimit time.Duration
	if quiz.TimeLimitMinutes != nil {
		timeLimit = time.Duration(*quiz.TimeLimitMinutes) * time.Minute
	}

	sessionID := uuid.NewString()
	ctrl := session.NewController(session.Config{
		SessionID: sessionID,
		QuizID:    quiz.ID,
		Questions: questions,
		TimeLimit: timeLimit,
		OnSubmit: func(snap session.Snapshot) {
			s.handleSubmit(snap, quiz)
		},
	})

	s.mu.Lock()
	s.sessions[sessionID] = ctrl
	s.mu.Unlock()

	if err := ctrl.Start(); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.publish(ctx, events.NewAttemptEvent(events.AttemptStarted, sessionID, quiz.ID, events.StartedPayload{
		QuestionCount:    len(questions),
		TimeLimitSeconds: int(timeLimit / time.Second),
		Timed:            timeLimit > 0,
	}))

	return s.stateOf(ctrl), nil
}

func (s *attemptService) buildPools(ctx context.Context, quiz *models.QuizDefinition) ([]sampler.Pool, error) {
	if quiz.IsExam() {
		pools := make([]sampler.Pool, 0, len(quiz.Quotas))
		for _, quota := range quiz.Quotas {
			questions, err := s.questions.GetByTopic(ctx, quota.TopicID)
			if err != nil {
				return nil, fmt.Errorf("failed to load topic %d pool: %w", quota.TopicID, err)
			}
			pools = append(pools, sampler.Pool{
				TopicID:   quota.TopicID,
				Questions: questions,
				Quota:     quota.QuestionCount,
			})
		}
		return pools, nil
	}

	questions, err := s.questions.GetByTopic(ctx, quiz.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic %d pool: %w", quiz.TopicID, err)
	}
	return []sampler.Pool{{
		TopicID:   quiz.TopicID,
		Questions: questions,
		Quota:     quiz.QuestionCount,
	}}, nil
}

func (s *attemptService) Answer(ctx context.Context, sessionID string, questionID uint, submission *AnswerSubmission) error {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return err
	}

	question := s.findQuestion(ctrl, questionID)
	if question == nil {
		return session.ErrUnknownQuestion
	}

	value := answerValue(question.Type, submission)
	if err := ctrl.Answer(questionID, value); err != nil {
		// Stray answer events after submission are dropped silently so a
		// slow UI never turns a finished attempt into an error.
		if errors.Is(err, session.ErrAlreadySubmitted) {
			return nil
		}
		return err
	}
	return nil
}

// answerValue converts the wire submission into the typed value the
// grader dispatches on, picked by the question's type.
func answerValue(questionType models.QuestionType, submission *AnswerSubmission) any {
	switch questionType {
	case models.SingleChoice, models.MultipleChoice:
		return models.ChoiceAnswer{SelectedOptions: submission.SelectedOptions}
	case models.FillBlank:
		return models.FillBlankAnswer{Values: submission.Values}
	case models.NumericInput:
		return models.NumericAnswer{Value: submission.Value}
	case models.Ordering:
		return models.OrderingAnswer{Order: submission.Order}
	case models.Matching:
		return models.MatchingAnswer{Pairs: submission.Pairs}
	}
	return nil
}

func (s *attemptService) Navigate(ctx context.Context, sessionID string, req *NavigateRequest) (*AttemptStateResponse, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "next":
		ctrl.Next()
	case "previous":
		ctrl.Previous()
	case "goto":
		if req.Index == nil {
			return nil, NewValidationError("index", "is required for goto", nil)
		}
		ctrl.GoTo(*req.Index)
	default:
		return nil, NewValidationError("action", "must be next, previous, or goto", req.Action)
	}
	return s.stateOf(ctrl), nil
}

func (s *attemptService) Submit(ctx context.Context, sessionID string) (*ResultResponse, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return nil, err
	}

	// A repeat submit, or a manual submit that lost the race against
	// timer expiry, still hands the learner their graded result.
	if err := ctrl.Submit(); err != nil && !errors.Is(err, session.ErrAlreadySubmitted) {
		return nil, err
	}
	return s.GetResult(ctx, sessionID)
}

func (s *attemptService) GetState(ctx context.Context, sessionID string) (*AttemptStateResponse, error) {
	ctrl, err := s.controller(sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateOf(ctrl), nil
}

func (s *attemptService) GetResult(ctx context.Context, sessionID string) (*ResultResponse, error) {
	s.mu.RLock()
	result, found := s.results[sessionID]
	s.mu.RUnlock()
	if found {
		return result, nil
	}

	s.mu.RLock()
	_, live := s.sessions[sessionID]
	s.mu.RUnlock()
	if live {
		return nil, ErrAttemptNotGraded
	}

	// The session may predate this process; fall back to the stored record.
	record, err := s.attempts.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt record: %w", err)
	}
	if record == nil {
		return nil, ErrSessionNotFound
	}
	return resultFromRecord(record), nil
}

func (s *attemptService) ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	return s.attempts.List(ctx, filters)
}

func (s *attemptService) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	return s.attempts.GetStats(ctx, quizID)
}

// ===== SUBMISSION PIPELINE =====

// handleSubmit receives the one-shot snapshot from the session
// controller, grades it, caches the result, and hands persistence and
// events off the hot path.
func (s *attemptService) handleSubmit(snap session.Snapshot, quiz *models.QuizDefinition) {
	results := s.grader.GradeAll(snap.Questions, snap.Answers)
	summary := s.aggregator.Aggregate(snap.Questions, results, quiz.ShowAnswers, quiz.PassingPercent, snap.ElapsedSeconds)

	result := &ResultResponse{
		SessionID: snap.SessionID,
		QuizID:    snap.QuizID,
		TimedOut:  snap.TimedOut,
		Summary:   summary,
	}

	s.mu.Lock()
	s.results[snap.SessionID] = result
	s.mu.Unlock()

	s.publish(context.Background(), events.NewAttemptEvent(events.AttemptSubmitted, snap.SessionID, snap.QuizID, events.SubmittedPayload{
		AnsweredCount:  len(snap.Answers),
		QuestionCount:  len(snap.Questions),
		ElapsedSeconds: snap.ElapsedSeconds,
		TimedOut:       snap.TimedOut,
	}))
	s.publish(context.Background(), events.NewAttemptEvent(events.AttemptGraded, snap.SessionID, snap.QuizID, events.GradedPayload{
		Score:      summary.Score,
		MaxScore:   summary.MaxScore,
		Percentage: summary.Percentage,
		Passed:     summary.Passed,
	}))

	// Persistence is fire-and-forget: a storage failure is logged and
	// never surfaces into the learner's result.
	record := buildRecord(snap, results, summary)
	s.persistWait.Add(1)
	go func() {
		defer s.persistWait.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.attempts.Create(ctx, record); err != nil {
			s.logger.LogError(err, "Failed to persist attempt record",
				"session_id", snap.SessionID,
				"quiz_id", snap.QuizID)
		}
	}()
}

// WaitForPersistence blocks until in-flight attempt writes finish; used
// on shutdown and in tests.
func (s *attemptService) WaitForPersistence() {
	s.persistWait.Wait()
}

func buildRecord(snap session.Snapshot, results []grading.Result, summary grading.Summary) *models.AttemptRecord {
	status := models.AttemptSubmitted
	if snap.TimedOut {
		status = models.AttemptTimedOut
	}
	record := &models.AttemptRecord{
		SessionID:      snap.SessionID,
		QuizID:         snap.QuizID,
		Score:          summary.Score,
		MaxScore:       summary.MaxScore,
		Percentage:     summary.Percentage,
		Passed:         summary.Passed,
		Status:         status,
		ElapsedSeconds: snap.ElapsedSeconds,
		CompletedAt:    time.Now().UTC(),
	}
	for _, r := range results {
		response := models.AttemptResponse{
			QuestionID:   r.QuestionID,
			QuestionType: r.Type,
			Earned:       r.Earned,
			Max:          r.Max,
			FullCredit:   r.FullCredit,
		}
		if answer, found := snap.Answers[r.QuestionID]; found {
			if payload, err := json.Marshal(answer); err == nil {
				response.Answer = datatypes.JSON(payload)
			}
		}
		record.Responses = append(record.Responses, response)
	}
	return record
}

func resultFromRecord(record *models.AttemptRecord) *ResultResponse {
	summary := grading.Summary{
		Score:          record.Score,
		MaxScore:       record.MaxScore,
		Percentage:     record.Percentage,
		Passed:         record.Passed,
		TotalQuestions: len(record.Responses),
		ElapsedSeconds: record.ElapsedSeconds,
	}
	for _, response := range record.Responses {
		if response.FullCredit {
			summary.CorrectCount++
		}
		summary.Breakdown = append(summary.Breakdown, grading.QuestionReview{
			Result: grading.Result{
				QuestionID: response.QuestionID,
				Type:       response.QuestionType,
				Earned:     response.Earned,
				Max:        response.Max,
				FullCredit: response.FullCredit,
				Answered:   len(response.Answer) > 0,
			},
		})
	}
	return &ResultResponse{
		SessionID: record.SessionID,
		QuizID:    record.QuizID,
		TimedOut:  record.Status == models.AttemptTimedOut,
		Summary:   summary,
	}
}

// ===== VIEW BUILDING =====

func (s *attemptService) stateOf(ctrl *session.Controller) *AttemptStateResponse {
	state := &AttemptStateResponse{
		SessionID:            ctrl.SessionID(),
		QuizID:               ctrl.QuizID(),
		State:                ctrl.State(),
		CurrentIndex:         ctrl.CurrentIndex(),
		QuestionCount:        len(ctrl.Questions()),
		AnsweredCount:        ctrl.AnsweredCount(),
		TimeRemainingSeconds: ctrl.TimeRemaining(),
	}
	if ctrl.State() == session.StateInProgress {
		if q := ctrl.CurrentQuestion(); q != nil {
			state.CurrentQuestion = s.viewOf(ctrl, q)
		}
	}
	return state
}

// viewOf projects a question for display, keeping every correctness
// marker server-side.
func (s *attemptService) viewOf(ctrl *session.Controller, q *models.Question) *QuestionView {
	view := &QuestionView{
		ID:     q.ID,
		Type:   q.Type,
		Text:   q.Text,
		Points: q.Points,
	}

	switch q.Type {
	case models.SingleChoice, models.MultipleChoice:
		for _, opt := range q.Options {
			view.Options = append(view.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
	case models.FillBlank:
		view.BlankCount = len(q.Blanks)
	case models.NumericInput:
		if q.Numeric != nil {
			view.Unit = q.Numeric.Unit
		}
	case models.Ordering:
		perm, err := ctrl.DisplayPlacement(q.ID)
		if err != nil || len(perm) != len(q.Items) {
			perm = identityPerm(len(q.Items))
		}
		for _, idx := range perm {
			view.Items = append(view.Items, OrderItemView{ID: q.Items[idx].ID, Text: q.Items[idx].Text})
		}
	case models.Matching:
		perm, err := ctrl.DisplayPlacement(q.ID)
		if err != nil || len(perm) != len(q.Pairs) {
			perm = identityPerm(len(q.Pairs))
		}
		for _, pair := range q.Pairs {
			view.Left = append(view.Left, MatchEntryView{ID: pair.ID, Text: pair.LeftItem})
		}
		for _, idx := range perm {
			view.Right = append(view.Right, MatchEntryView{ID: q.Pairs[idx].ID, Text: q.Pairs[idx].RightItem})
		}
	}
	return view
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// ===== HELPERS =====

func (s *attemptService) controller(sessionID string) (*session.Controller, error) {
	s.mu.RLock()
	ctrl, found := s.sessions[sessionID]
	s.mu.RUnlock()
	if !found {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

func (s *attemptService) findQuestion(ctrl *session.Controller, questionID uint) *models.Question {
	questions := ctrl.Questions()
	for i := range questions {
		if questions[i].ID == questionID {
			return &questions[i]
		}
	}
	return nil
}

func (s *attemptService) publish(ctx context.Context, event *events.AttemptEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish attempt event",
			"event_type", event.Type,
			"session_id", event.SessionID)
	}
}
