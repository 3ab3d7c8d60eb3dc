package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/attempt-service/internal/models"
)

func newTestSampler() *Sampler {
	return New(rand.New(rand.NewSource(42)))
}

func makeQuestions(topicID uint, n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:      uint(i + 1 + int(topicID)*100),
			TopicID: topicID,
			Type:    models.SingleChoice,
			Text:    "question",
			Points:  1,
			Options: []models.Option{
				{ID: "a", Text: "A", IsCorrect: true},
				{ID: "b", Text: "B"},
				{ID: "c", Text: "C"},
				{ID: "d", Text: "D"},
			},
		}
	}
	return qs
}

func idsOf(qs []models.Question) []uint {
	ids := make([]uint, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func TestSample_QuotaWithinPool(t *testing.T) {
	s := newTestSampler()

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: makeQuestions(1, 10), Quota: 4}}, Options{ShuffleQuestions: true})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	seen := make(map[uint]bool)
	for _, q := range got {
		assert.False(t, seen[q.ID], "question drawn twice")
		seen[q.ID] = true
	}
}

func TestSample_QuotaExceedsPool(t *testing.T) {
	s := newTestSampler()

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: makeQuestions(1, 3), Quota: 10}}, Options{ShuffleQuestions: true})
	require.NoError(t, err)
	assert.Len(t, got, 3, "oversized quota truncates to the pool")
}

func TestSample_EmptyPools(t *testing.T) {
	s := newTestSampler()

	_, err := s.Sample([]Pool{{TopicID: 1, Quota: 5}}, Options{})
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)

	_, err = s.Sample(nil, Options{})
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
}

func TestSample_NoShufflePreservesOrder(t *testing.T) {
	s := newTestSampler()
	pool := makeQuestions(1, 5)

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: pool, Quota: 5}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, idsOf(pool), idsOf(got))
}

func TestSample_ShuffleIsPermutation(t *testing.T) {
	s := newTestSampler()
	pool := makeQuestions(1, 20)

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: pool, Quota: 20}}, Options{ShuffleQuestions: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, idsOf(pool), idsOf(got))
	// The source pool must stay in its original order.
	assert.Equal(t, uint(101), pool[0].ID)
	assert.Equal(t, uint(120), pool[19].ID)
}

func TestSample_MultiPoolConcatenationOrder(t *testing.T) {
	s := newTestSampler()
	pools := []Pool{
		{TopicID: 1, Questions: makeQuestions(1, 5), Quota: 2},
		{TopicID: 2, Questions: makeQuestions(2, 5), Quota: 3},
		{TopicID: 3, Questions: makeQuestions(3, 5), Quota: 1},
	}

	got, err := s.Sample(pools, Options{ShuffleQuestions: true})
	require.NoError(t, err)
	require.Len(t, got, 6)

	assert.Equal(t, uint(1), got[0].TopicID)
	assert.Equal(t, uint(1), got[1].TopicID)
	assert.Equal(t, uint(2), got[2].TopicID)
	assert.Equal(t, uint(2), got[3].TopicID)
	assert.Equal(t, uint(2), got[4].TopicID)
	assert.Equal(t, uint(3), got[5].TopicID)
}

func TestSample_OptionShuffle(t *testing.T) {
	s := newTestSampler()
	pool := makeQuestions(1, 1)

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: pool, Quota: 1}}, Options{ShuffleOptions: true})
	require.NoError(t, err)
	require.Len(t, got, 1)

	var origIDs, gotIDs []string
	for _, o := range pool[0].Options {
		origIDs = append(origIDs, o.ID)
	}
	for _, o := range got[0].Options {
		gotIDs = append(gotIDs, o.ID)
	}
	assert.ElementsMatch(t, origIDs, gotIDs)
	// Correctness flags travel with their options.
	for _, o := range got[0].Options {
		assert.Equal(t, o.ID == "a", o.IsCorrect)
	}
	// The stored question keeps its original option order.
	assert.Equal(t, []string{"a", "b", "c", "d"}, origIDs)
}

func TestSample_OptionShuffleSkipsNonChoice(t *testing.T) {
	s := newTestSampler()
	q := models.Question{
		ID: 1, TopicID: 1, Type: models.Ordering, Text: "order", Points: 2,
		Items: []models.OrderItem{
			{ID: "i1", CorrectPosition: 1},
			{ID: "i2", CorrectPosition: 2},
		},
	}

	got, err := s.Sample([]Pool{{TopicID: 1, Questions: []models.Question{q}, Quota: 1}}, Options{ShuffleOptions: true})
	require.NoError(t, err)
	assert.Equal(t, "i1", got[0].Items[0].ID)
	assert.Equal(t, "i2", got[0].Items[1].ID)
}

func TestShufflePlacement(t *testing.T) {
	s := newTestSampler()

	perm := s.ShufflePlacement(6)
	require.Len(t, perm, 6)

	seen := make(map[int]bool)
	for _, p := range perm {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 6)
		assert.False(t, seen[p])
		seen[p] = true
	}
}
