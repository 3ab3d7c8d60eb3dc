package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quizforge/attempt-service/internal/models"
)

func TestValidateChoice(t *testing.T) {
	v := NewQuestionValidator()

	valid := &models.Question{
		Type: models.SingleChoice,
		Options: []models.Option{
			{ID: "a", Text: "A", IsCorrect: true},
			{ID: "b", Text: "B"},
		},
	}
	assert.Empty(t, v.Validate(valid))

	twoCorrect := &models.Question{
		Type: models.SingleChoice,
		Options: []models.Option{
			{ID: "a", IsCorrect: true},
			{ID: "b", IsCorrect: true},
		},
	}
	assert.NotEmpty(t, v.Validate(twoCorrect))

	duplicateIDs := &models.Question{
		Type: models.MultipleChoice,
		Options: []models.Option{
			{ID: "a", IsCorrect: true},
			{ID: "a"},
		},
	}
	assert.NotEmpty(t, v.Validate(duplicateIDs))

	noCorrect := &models.Question{
		Type: models.MultipleChoice,
		Options: []models.Option{
			{ID: "a"},
			{ID: "b"},
		},
	}
	assert.NotEmpty(t, v.Validate(noCorrect))
}

func TestValidateFillBlank(t *testing.T) {
	v := NewQuestionValidator()

	valid := &models.Question{
		Type: models.FillBlank,
		Blanks: []models.Blank{
			{Index: 0, CorrectAnswer: "x"},
			{Index: 1, CorrectAnswer: "y"},
		},
	}
	assert.Empty(t, v.Validate(valid))

	empty := &models.Question{Type: models.FillBlank}
	assert.NotEmpty(t, v.Validate(empty))

	duplicateIndex := &models.Question{
		Type: models.FillBlank,
		Blanks: []models.Blank{
			{Index: 0, CorrectAnswer: "x"},
			{Index: 0, CorrectAnswer: "y"},
		},
	}
	assert.NotEmpty(t, v.Validate(duplicateIndex))
}

func TestValidateNumeric(t *testing.T) {
	v := NewQuestionValidator()

	valid := &models.Question{
		Type:    models.NumericInput,
		Numeric: &models.NumericSpec{CorrectAnswer: 10, Tolerance: 0.5},
	}
	assert.Empty(t, v.Validate(valid))

	missing := &models.Question{Type: models.NumericInput}
	assert.NotEmpty(t, v.Validate(missing))

	negative := &models.Question{
		Type:    models.NumericInput,
		Numeric: &models.NumericSpec{CorrectAnswer: 10, Tolerance: -1},
	}
	assert.NotEmpty(t, v.Validate(negative))
}

func TestValidateOrdering(t *testing.T) {
	v := NewQuestionValidator()

	valid := &models.Question{
		Type: models.Ordering,
		Items: []models.OrderItem{
			{ID: "a", CorrectPosition: 2},
			{ID: "b", CorrectPosition: 1},
			{ID: "c", CorrectPosition: 3},
		},
	}
	assert.Empty(t, v.Validate(valid))

	gap := &models.Question{
		Type: models.Ordering,
		Items: []models.OrderItem{
			{ID: "a", CorrectPosition: 1},
			{ID: "b", CorrectPosition: 3},
		},
	}
	assert.NotEmpty(t, v.Validate(gap), "positions must be the permutation 1..n")

	duplicatePosition := &models.Question{
		Type: models.Ordering,
		Items: []models.OrderItem{
			{ID: "a", CorrectPosition: 1},
			{ID: "b", CorrectPosition: 1},
		},
	}
	assert.NotEmpty(t, v.Validate(duplicatePosition))
}

func TestValidateMatching(t *testing.T) {
	v := NewQuestionValidator()

	valid := &models.Question{
		Type: models.Matching,
		Pairs: []models.MatchPair{
			{ID: "p1", LeftItem: "l1", RightItem: "r1"},
			{ID: "p2", LeftItem: "l2", RightItem: "r2"},
		},
	}
	assert.Empty(t, v.Validate(valid))

	single := &models.Question{
		Type:  models.Matching,
		Pairs: []models.MatchPair{{ID: "p1", LeftItem: "l", RightItem: "r"}},
	}
	assert.NotEmpty(t, v.Validate(single))

	blankEntry := &models.Question{
		Type: models.Matching,
		Pairs: []models.MatchPair{
			{ID: "p1", LeftItem: "l1", RightItem: ""},
			{ID: "p2", LeftItem: "l2", RightItem: "r2"},
		},
	}
	assert.NotEmpty(t, v.Validate(blankEntry))
}
