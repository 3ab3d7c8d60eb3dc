package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/quizforge/attempt-service/internal/models"
)

// Result is the graded outcome of a single question.
type Result struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Earned     float64             `json:"earned"`
	Max        float64             `json:"max"`
	FullCredit bool                `json:"full_credit"`
	Answered   bool                `json:"answered"`
}

// strategy computes the earned points for one question. It must be
// total: any answer value, including nil or a wrong-shaped one, grades
// to a score in [0, points] and never to an error.
type strategy func(q *models.Question, answer any) float64

// Grader dispatches to one strategy per question type.
type Grader struct {
	strategies map[models.QuestionType]strategy
}

func NewGrader() *Grader {
	g := &Grader{}
	g.strategies = map[models.QuestionType]strategy{
		models.SingleChoice:   gradeChoice,
		models.MultipleChoice: gradeChoice,
		models.FillBlank:      gradeFillBlank,
		models.NumericInput:   gradeNumeric,
		models.Ordering:       gradeOrdering,
		models.Matching:       gradeMatching,
	}
	return g
}

// Grade scores one question against the learner's answer value. Missing
// answers and unknown types earn zero.
func (g *Grader) Grade(q *models.Question, answer any) Result {
	res := Result{
		QuestionID: q.ID,
		Type:       q.Type,
		Max:        float64(q.Points),
		Answered:   answer != nil,
	}
	strat, ok := g.strategies[q.Type]
	if !ok || answer == nil {
		return res
	}
	res.Earned = strat(q, answer)
	res.FullCredit = res.Earned == res.Max
	return res
}

// GradeAll scores a full snapshot: every sampled question against the
// answer map, in question order.
func (g *Grader) GradeAll(questions []models.Question, answers map[uint]any) []Result {
	results := make([]Result, len(questions))
	for i := range questions {
		results[i] = g.Grade(&questions[i], answers[questions[i].ID])
	}
	return results
}

// gradeChoice is all-or-nothing: the selected option id set must equal
// the correct id set exactly. Single choice is the one-element case of
// the same rule.
func gradeChoice(q *models.Question, answer any) float64 {
	a, ok := answer.(models.ChoiceAnswer)
	if !ok {
		return 0
	}
	correct := q.CorrectOptionIDs()
	if len(a.SelectedOptions) != len(correct) || len(correct) == 0 {
		return 0
	}
	correctSet := make(map[string]bool, len(correct))
	for _, id := range correct {
		correctSet[id] = true
	}
	seen := make(map[string]bool, len(a.SelectedOptions))
	for _, id := range a.SelectedOptions {
		if !correctSet[id] || seen[id] {
			return 0
		}
		seen[id] = true
	}
	return float64(q.Points)
}

// gradeFillBlank awards an even share per matched blank. Text blanks
// compare trimmed and case-insensitive against the correct answer and
// its alternates; numeric blanks compare within tolerance.
func gradeFillBlank(q *models.Question, answer any) float64 {
	a, ok := answer.(models.FillBlankAnswer)
	if !ok || len(q.Blanks) == 0 {
		return 0
	}
	share := float64(q.Points) / float64(len(q.Blanks))
	var earned float64
	for _, blank := range q.Blanks {
		if blank.Index < 0 || blank.Index >= len(a.Values) {
			continue
		}
		if blankMatches(&blank, a.Values[blank.Index]) {
			earned += share
		}
	}
	return roundTo2(earned)
}

func blankMatches(blank *models.Blank, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if blank.IsNumeric {
		user, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		correct, err := strconv.ParseFloat(strings.TrimSpace(blank.CorrectAnswer), 64)
		if err != nil {
			return false
		}
		tolerance := 0.0
		if blank.Tolerance != nil {
			tolerance = *blank.Tolerance
		}
		return math.Abs(user-correct) <= tolerance
	}
	if strings.EqualFold(value, strings.TrimSpace(blank.CorrectAnswer)) {
		return true
	}
	for _, alt := range blank.AcceptableAlternates {
		if strings.EqualFold(value, strings.TrimSpace(alt)) {
			return true
		}
	}
	return false
}

// gradeNumeric is all-or-nothing within tolerance. Unparsable input is
// an incorrect answer, not an error.
func gradeNumeric(q *models.Question, answer any) float64 {
	a, ok := answer.(models.NumericAnswer)
	if !ok || q.Numeric == nil {
		return 0
	}
	user, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		return 0
	}
	if math.Abs(user-q.Numeric.CorrectAnswer) <= q.Numeric.Tolerance {
		return float64(q.Points)
	}
	return 0
}

// gradeOrdering credits each item placed in its correct 1-indexed slot.
// A submitted order of the wrong length scores zero for the question.
func gradeOrdering(q *models.Question, answer any) float64 {
	a, ok := answer.(models.OrderingAnswer)
	if !ok || len(q.Items) == 0 {
		return 0
	}
	if len(a.Order) != len(q.Items) {
		return 0
	}
	positions := make(map[string]int, len(q.Items))
	for _, item := range q.Items {
		positions[item.ID] = item.CorrectPosition
	}
	share := float64(q.Points) / float64(len(q.Items))
	var earned float64
	for i, id := range a.Order {
		if pos, found := positions[id]; found && pos == i+1 {
			earned += share
		}
	}
	return roundTo2(earned)
}

// gradeMatching credits a pair when the chosen right-hand id for its
// left entry is the pair's own id.
func gradeMatching(q *models.Question, answer any) float64 {
	a, ok := answer.(models.MatchingAnswer)
	if !ok || len(q.Pairs) == 0 {
		return 0
	}
	share := float64(q.Points) / float64(len(q.Pairs))
	var earned float64
	for _, pair := range q.Pairs {
		if a.Pairs[pair.ID] == pair.ID {
			earned += share
		}
	}
	return roundTo2(earned)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
