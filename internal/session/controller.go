package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/quizforge/attempt-service/internal/models"
)

type State string

const (
	StateInitializing State = "Initializing"
	StateInProgress   State = "InProgress"
	StateSubmitted    State = "Submitted"
)

var (
	ErrNotStarted       = errors.New("session has not been started")
	ErrAlreadyStarted   = errors.New("session has already been started")
	ErrAlreadySubmitted = errors.New("session has already been submitted")
	ErrUnknownQuestion  = errors.New("question does not belong to this session")
)

// Snapshot is the immutable view handed to the grading pipeline on
// submit. The answer map is a copy; the live session map is never
// shared.
type Snapshot struct {
	SessionID      string
	QuizID         uint
	Questions      []models.Question
	Answers        map[uint]any
	ElapsedSeconds int
	TimedOut       bool
}

// SubmitFunc receives the snapshot exactly once per session, whether
// submission was manual or forced by the countdown.
type SubmitFunc func(Snapshot)

// Config carries everything a session needs at construction.
type Config struct {
	SessionID string
	QuizID    uint
	Questions []models.Question
	// TimeLimit of zero means the session is untimed.
	TimeLimit time.Duration
	OnSubmit  SubmitFunc
}

// Option tweaks internals that tests need to control.
type Option func(*Controller)

// WithClock replaces the wall clock used for elapsed-time measurement.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTickInterval replaces the one-second countdown granularity.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) { c.tickInterval = d }
}

// WithRand replaces the source used for display placements.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// Controller owns a single attempt: the immutable question list, the
// answer map, the cursor, and the countdown. All methods are safe for
// concurrent use.
type Controller struct {
	mu sync.Mutex

	sessionID string
	quizID    uint
	questions []models.Question
	byID      map[uint]int

	state     State
	answers   map[uint]any
	current   int
	startedAt time.Time
	submitted bool

	timeLimit    time.Duration
	remaining    int // seconds, meaningful only when timeLimit > 0
	tickInterval time.Duration
	stopTimer    chan struct{}

	// placements holds the lazily rolled display permutation per
	// question, for ordering items and matching right-hand entries.
	placements map[uint][]int
	rng        *rand.Rand

	onSubmit SubmitFunc
	now      func() time.Time
}

func NewController(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		sessionID:    cfg.SessionID,
		quizID:       cfg.QuizID,
		questions:    cfg.Questions,
		byID:         make(map[uint]int, len(cfg.Questions)),
		state:        StateInitializing,
		answers:      make(map[uint]any),
		timeLimit:    cfg.TimeLimit,
		tickInterval: time.Second,
		stopTimer:    make(chan struct{}),
		placements:   make(map[uint][]int),
		onSubmit:     cfg.OnSubmit,
		now:          time.Now,
	}
	for i := range cfg.Questions {
		c.byID[cfg.Questions[i].ID] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Start moves the session to InProgress and, when a time limit is set,
// begins the per-second countdown.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != StateInitializing {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateInProgress
	c.startedAt = c.now()
	if c.timeLimit > 0 {
		c.remaining = int(c.timeLimit / time.Second)
	}
	c.mu.Unlock()

	if c.timeLimit > 0 {
		go c.runCountdown()
	}
	return nil
}

func (c *Controller) runCountdown() {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopTimer:
			return
		case <-ticker.C:
			if c.tickSecond() {
				return
			}
		}
	}
}

// tickSecond decrements the countdown and reports whether the timer
// goroutine should exit.
func (c *Controller) tickSecond() bool {
	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	expired := c.remaining <= 0
	c.mu.Unlock()

	if expired {
		c.trySubmit(true)
		return true
	}
	return false
}

// Answer records the learner's answer value for a question in the
// session. Calls after submission are rejected.
func (c *Controller) Answer(questionID uint, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateInitializing:
		return ErrNotStarted
	case StateSubmitted:
		return ErrAlreadySubmitted
	}
	if _, found := c.byID[questionID]; !found {
		return ErrUnknownQuestion
	}
	c.answers[questionID] = value
	return nil
}

// GoTo moves the cursor, clamped to the question list. Out-of-range
// targets and post-submit calls leave the cursor unchanged.
func (c *Controller) GoTo(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return
	}
	if index < 0 || index >= len(c.questions) {
		return
	}
	c.current = index
}

// Next advances by one; at the last question it is a no-op.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress || c.current >= len(c.questions)-1 {
		return
	}
	c.current++
}

// Previous steps back by one; at the first question it is a no-op.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress || c.current <= 0 {
		return
	}
	c.current--
}

// Submit finishes the attempt and delivers the snapshot to OnSubmit.
// Whichever of manual submit and timer expiry comes second is a no-op;
// the manual caller learns that via ErrAlreadySubmitted.
func (c *Controller) Submit() error {
	c.mu.Lock()
	if c.state == StateInitializing {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.mu.Unlock()

	if !c.trySubmit(false) {
		return ErrAlreadySubmitted
	}
	return nil
}

// trySubmit is the one-shot gate shared by manual submit and timer
// expiry. It reports whether this call won.
func (c *Controller) trySubmit(timedOut bool) bool {
	c.mu.Lock()
	if c.submitted || c.state != StateInProgress {
		c.mu.Unlock()
		return false
	}
	c.submitted = true
	c.state = StateSubmitted
	snap := c.snapshotLocked(timedOut)
	close(c.stopTimer)
	c.mu.Unlock()

	// Deliver outside the lock so the grading pipeline can call back
	// into read methods.
	if c.onSubmit != nil {
		c.onSubmit(snap)
	}
	return true
}

func (c *Controller) snapshotLocked(timedOut bool) Snapshot {
	answers := make(map[uint]any, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	return Snapshot{
		SessionID:      c.sessionID,
		QuizID:         c.quizID,
		Questions:      c.questions,
		Answers:        answers,
		ElapsedSeconds: int(c.now().Sub(c.startedAt) / time.Second),
		TimedOut:       timedOut,
	}
}

// DisplayPlacement returns the display permutation for a matching or
// ordering question, rolled once when the question is first displayed
// and stable afterwards.
func (c *Controller) DisplayPlacement(questionID uint) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, found := c.byID[questionID]
	if !found {
		return nil, ErrUnknownQuestion
	}
	if perm, rolled := c.placements[questionID]; rolled {
		return perm, nil
	}
	q := &c.questions[idx]
	var n int
	switch q.Type {
	case models.Ordering:
		n = len(q.Items)
	case models.Matching:
		n = len(q.Pairs)
	default:
		return nil, nil
	}
	perm := c.rng.Perm(n)
	c.placements[questionID] = perm
	return perm, nil
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentIndex reports the cursor position.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentQuestion returns the question under the cursor.
func (c *Controller) CurrentQuestion() *models.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.questions) == 0 {
		return nil
	}
	return &c.questions[c.current]
}

// Questions returns the session's immutable question list.
func (c *Controller) Questions() []models.Question {
	return c.questions
}

// AnswerFor returns the recorded answer for a question, if any.
func (c *Controller) AnswerFor(questionID uint) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, found := c.answers[questionID]
	return v, found
}

// AnsweredCount reports how many questions carry an answer value.
func (c *Controller) AnsweredCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}

// TimeRemaining reports the countdown in seconds; untimed sessions
// report -1.
func (c *Controller) TimeRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timeLimit == 0 {
		return -1
	}
	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}

// QuizID returns the definition the session was started from.
func (c *Controller) QuizID() uint {
	return c.quizID
}

// SessionID returns the session's identifier.
func (c *Controller) SessionID() string {
	return c.sessionID
}
