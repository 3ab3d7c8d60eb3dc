package grading

import (
	"math"

	"github.com/quizforge/attempt-service/internal/models"
)

// QuestionReview is one breakdown entry, optionally enriched with the
// correct answer for display.
type QuestionReview struct {
	Result
	Text          string  `json:"text"`
	Explanation   *string `json:"explanation,omitempty"`
	CorrectAnswer any     `json:"correct_answer,omitempty"`
}

// Summary is the aggregated outcome of a graded attempt.
type Summary struct {
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`
	Percentage     float64 `json:"percentage"` // unrounded
	Passed         bool    `json:"passed"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	ElapsedSeconds int     `json:"elapsed_seconds"`

	// Breakdown is nil when the show-answers policy is "never".
	Breakdown []QuestionReview `json:"breakdown,omitempty"`
}

// Aggregator folds per-question results into an attempt summary.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate sums earned and maximum points, derives the percentage, and
// compares its rounded value against the passing threshold. The
// percentage itself is reported raw.
func (a *Aggregator) Aggregate(questions []models.Question, results []Result, policy models.ShowAnswersPolicy, passingPercent, elapsedSeconds int) Summary {
	sum := Summary{
		TotalQuestions: len(results),
		ElapsedSeconds: elapsedSeconds,
	}
	for _, r := range results {
		sum.Score += r.Earned
		sum.MaxScore += r.Max
		if r.FullCredit {
			sum.CorrectCount++
		}
	}
	if sum.MaxScore > 0 {
		sum.Percentage = sum.Score / sum.MaxScore * 100
	}
	sum.Passed = math.Round(sum.Percentage) >= float64(passingPercent)

	if policy != models.ShowNever {
		sum.Breakdown = buildBreakdown(questions, results)
	}
	return sum
}

func buildBreakdown(questions []models.Question, results []Result) []QuestionReview {
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	reviews := make([]QuestionReview, 0, len(results))
	for _, r := range results {
		review := QuestionReview{Result: r}
		if q, found := byID[r.QuestionID]; found {
			review.Text = q.Text
			review.Explanation = q.Explanation
			review.CorrectAnswer = correctAnswerOf(q)
		}
		reviews = append(reviews, review)
	}
	return reviews
}

// correctAnswerOf renders the expected answer in the same shape the
// learner submits, so clients can diff side by side.
func correctAnswerOf(q *models.Question) any {
	switch q.Type {
	case models.SingleChoice, models.MultipleChoice:
		return models.ChoiceAnswer{SelectedOptions: q.CorrectOptionIDs()}
	case models.FillBlank:
		values := make([]string, len(q.Blanks))
		for _, b := range q.Blanks {
			if b.Index >= 0 && b.Index < len(values) {
				values[b.Index] = b.CorrectAnswer
			}
		}
		return models.FillBlankAnswer{Values: values}
	case models.NumericInput:
		if q.Numeric == nil {
			return nil
		}
		return q.Numeric.CorrectAnswer
	case models.Ordering:
		order := make([]string, len(q.Items))
		for _, item := range q.Items {
			if item.CorrectPosition >= 1 && item.CorrectPosition <= len(order) {
				order[item.CorrectPosition-1] = item.ID
			}
		}
		return models.OrderingAnswer{Order: order}
	case models.Matching:
		pairs := make(map[string]string, len(q.Pairs))
		for _, p := range q.Pairs {
			pairs[p.ID] = p.ID
		}
		return models.MatchingAnswer{Pairs: pairs}
	}
	return nil
}
