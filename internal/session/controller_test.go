package session

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/attempt-service/internal/models"
)

func testQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:     uint(i + 1),
			Type:   models.SingleChoice,
			Text:   "q",
			Points: 1,
			Options: []models.Option{
				{ID: "a", IsCorrect: true},
				{ID: "b"},
			},
		}
	}
	return qs
}

func newTestController(n int, onSubmit SubmitFunc, opts ...Option) *Controller {
	return NewController(Config{
		SessionID: "sess-1",
		QuizID:    7,
		Questions: testQuestions(n),
		OnSubmit:  onSubmit,
	}, opts...)
}

func TestLifecycle(t *testing.T) {
	c := newTestController(3, nil)
	assert.Equal(t, StateInitializing, c.State())

	assert.ErrorIs(t, c.Answer(1, models.ChoiceAnswer{}), ErrNotStarted)
	assert.ErrorIs(t, c.Submit(), ErrNotStarted)

	require.NoError(t, c.Start())
	assert.Equal(t, StateInProgress, c.State())
	assert.ErrorIs(t, c.Start(), ErrAlreadyStarted)

	require.NoError(t, c.Submit())
	assert.Equal(t, StateSubmitted, c.State())
	assert.ErrorIs(t, c.Submit(), ErrAlreadySubmitted)
}

func TestAnswerRecording(t *testing.T) {
	c := newTestController(2, nil)
	require.NoError(t, c.Start())

	require.NoError(t, c.Answer(1, models.ChoiceAnswer{SelectedOptions: []string{"a"}}))
	v, found := c.AnswerFor(1)
	require.True(t, found)
	assert.Equal(t, models.ChoiceAnswer{SelectedOptions: []string{"a"}}, v)

	// Re-answering replaces the value.
	require.NoError(t, c.Answer(1, models.ChoiceAnswer{SelectedOptions: []string{"b"}}))
	v, _ = c.AnswerFor(1)
	assert.Equal(t, models.ChoiceAnswer{SelectedOptions: []string{"b"}}, v)
	assert.Equal(t, 1, c.AnsweredCount())

	assert.ErrorIs(t, c.Answer(99, nil), ErrUnknownQuestion)
}

func TestNavigationClamping(t *testing.T) {
	c := newTestController(3, nil)
	require.NoError(t, c.Start())

	assert.Equal(t, 0, c.CurrentIndex())
	c.Previous()
	assert.Equal(t, 0, c.CurrentIndex(), "previous at the first question is a no-op")

	c.Next()
	c.Next()
	assert.Equal(t, 2, c.CurrentIndex())
	c.Next()
	assert.Equal(t, 2, c.CurrentIndex(), "next at the last question is a no-op")

	c.GoTo(1)
	assert.Equal(t, 1, c.CurrentIndex())
	c.GoTo(-1)
	assert.Equal(t, 1, c.CurrentIndex())
	c.GoTo(99)
	assert.Equal(t, 1, c.CurrentIndex())

	assert.Equal(t, uint(2), c.CurrentQuestion().ID)
}

func TestPostSubmitCallsAreNoOps(t *testing.T) {
	c := newTestController(3, nil)
	require.NoError(t, c.Start())
	c.GoTo(1)
	require.NoError(t, c.Submit())

	assert.ErrorIs(t, c.Answer(1, models.ChoiceAnswer{}), ErrAlreadySubmitted)
	c.Next()
	c.Previous()
	c.GoTo(2)
	assert.Equal(t, 1, c.CurrentIndex())
}

func TestSubmitSnapshotIsolation(t *testing.T) {
	var snap Snapshot
	c := newTestController(2, func(s Snapshot) { snap = s })
	require.NoError(t, c.Start())
	require.NoError(t, c.Answer(1, models.ChoiceAnswer{SelectedOptions: []string{"a"}}))
	require.NoError(t, c.Submit())

	require.NotNil(t, snap.Answers)
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Equal(t, uint(7), snap.QuizID)
	assert.Len(t, snap.Questions, 2)
	assert.False(t, snap.TimedOut)

	// Mutating the snapshot must not reach the session.
	snap.Answers[2] = models.ChoiceAnswer{SelectedOptions: []string{"b"}}
	_, found := c.AnswerFor(2)
	assert.False(t, found)
}

func TestSubmitRace_SingleDelivery(t *testing.T) {
	var deliveries atomic.Int32
	c := newTestController(1, func(Snapshot) { deliveries.Add(1) })
	require.NoError(t, c.Start())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Submit()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), deliveries.Load(), "snapshot must be delivered exactly once")
}

func TestCountdownForcesSubmit(t *testing.T) {
	var snap Snapshot
	var delivered atomic.Int32
	c := NewController(Config{
		SessionID: "timed",
		Questions: testQuestions(1),
		TimeLimit: 2 * time.Second,
		OnSubmit: func(s Snapshot) {
			snap = s
			delivered.Add(1)
		},
	}, WithTickInterval(time.Millisecond))
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateSubmitted, c.State())
	assert.True(t, snap.TimedOut)
	assert.Equal(t, 0, c.TimeRemaining())

	// A manual submit after expiry stays a no-op.
	assert.ErrorIs(t, c.Submit(), ErrAlreadySubmitted)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestManualSubmitStopsCountdown(t *testing.T) {
	var delivered atomic.Int32
	c := NewController(Config{
		SessionID: "timed",
		Questions: testQuestions(1),
		TimeLimit: 2 * time.Second,
		OnSubmit:  func(Snapshot) { delivered.Add(1) },
	}, WithTickInterval(time.Millisecond))
	require.NoError(t, c.Start())
	require.NoError(t, c.Submit())

	// Give any stale tick time to fire; it must not deliver again.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestTimeRemaining_Untimed(t *testing.T) {
	c := newTestController(1, nil)
	require.NoError(t, c.Start())
	assert.Equal(t, -1, c.TimeRemaining())
}

func TestElapsedSeconds(t *testing.T) {
	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var snap Snapshot
	c := NewController(Config{
		SessionID: "clocked",
		Questions: testQuestions(1),
		OnSubmit:  func(s Snapshot) { snap = s },
	}, WithClock(func() time.Time { return current }))
	require.NoError(t, c.Start())

	current = current.Add(95 * time.Second)
	require.NoError(t, c.Submit())
	assert.Equal(t, 95, snap.ElapsedSeconds)
}

func TestDisplayPlacement(t *testing.T) {
	qs := []models.Question{
		{
			ID: 1, Type: models.Matching, Points: 3,
			Pairs: []models.MatchPair{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}},
		},
		{
			ID: 2, Type: models.SingleChoice, Points: 1,
			Options: []models.Option{{ID: "a", IsCorrect: true}},
		},
	}
	c := NewController(Config{SessionID: "s", Questions: qs},
		WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, c.Start())

	perm, err := c.DisplayPlacement(1)
	require.NoError(t, err)
	require.Len(t, perm, 3)
	seen := make(map[int]bool)
	for _, p := range perm {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 3)
		seen[p] = true
	}
	assert.Len(t, seen, 3)

	// Stable across repeated displays within the session.
	again, err := c.DisplayPlacement(1)
	require.NoError(t, err)
	assert.Equal(t, perm, again)

	// Non-placement types have no permutation.
	none, err := c.DisplayPlacement(2)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = c.DisplayPlacement(42)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}
