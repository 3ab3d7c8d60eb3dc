package sampler

import (
	"errors"
	"math/rand"
	"time"

	"github.com/quizforge/attempt-service/internal/models"
)

// ErrNoQuestionsAvailable is returned when sampling resolves to an
// empty question list across all pools.
var ErrNoQuestionsAvailable = errors.New("no questions available for the requested configuration")

// Pool is one sampling source: the questions of a single topic plus how
// many of them to draw. A quiz is one pool; an exam is one pool per
// topic quota.
type Pool struct {
	TopicID   uint
	Questions []models.Question
	Quota     int
}

// Options controls randomization at sampling time.
type Options struct {
	// ShuffleQuestions applies a uniform shuffle to each pool before the
	// quota is taken. When off, pool order is preserved.
	ShuffleQuestions bool
	// ShuffleOptions permutes the option list of choice questions. The
	// permutation happens once, here; it is stable for the rest of the
	// session.
	ShuffleOptions bool
}

// Sampler draws questions from topic pools. The random source is
// injectable so tests can make draws deterministic.
type Sampler struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// Sample draws from each pool in declaration order and concatenates the
// results. A quota larger than its pool truncates silently to the pool
// size. An empty overall result yields ErrNoQuestionsAvailable.
func (s *Sampler) Sample(pools []Pool, opts Options) ([]models.Question, error) {
	var selected []models.Question
	for _, pool := range pools {
		drawn := s.drawFromPool(pool, opts)
		selected = append(selected, drawn...)
	}
	if len(selected) == 0 {
		return nil, ErrNoQuestionsAvailable
	}
	return selected, nil
}

func (s *Sampler) drawFromPool(pool Pool, opts Options) []models.Question {
	if len(pool.Questions) == 0 || pool.Quota <= 0 {
		return nil
	}

	// Work on a copy so the caller's pool is never reordered.
	candidates := make([]models.Question, len(pool.Questions))
	copy(candidates, pool.Questions)

	if opts.ShuffleQuestions {
		s.shuffleQuestions(candidates)
	}

	take := pool.Quota
	if take > len(candidates) {
		take = len(candidates)
	}

	drawn := candidates[:take]
	if opts.ShuffleOptions {
		for i := range drawn {
			if drawn[i].IsChoice() {
				drawn[i].Options = s.shuffledOptions(drawn[i].Options)
			}
		}
	}
	return drawn
}

// shuffleQuestions is a Fisher–Yates shuffle, uniform over permutations.
func (s *Sampler) shuffleQuestions(qs []models.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

// shuffledOptions returns a permuted copy, leaving the stored question
// untouched.
func (s *Sampler) shuffledOptions(opts []models.Option) []models.Option {
	shuffled := make([]models.Option, len(opts))
	copy(shuffled, opts)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// ShufflePlacement returns a random permutation of n display slots,
// used for the presentation-side placement of ordering items and
// matching right-hand entries.
func (s *Sampler) ShufflePlacement(n int) []int {
	perm := s.rng.Perm(n)
	return perm
}
