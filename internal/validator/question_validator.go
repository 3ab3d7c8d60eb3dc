package validator

import (
	"github.com/quizforge/attempt-service/internal/errors"
	"github.com/quizforge/attempt-service/internal/models"
)

// QuestionValidator checks the type-specific payload of a question:
// the right child collection must be populated and internally
// consistent for the declared type.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Validate checks the payload for the question's declared type.
func (v *QuestionValidator) Validate(q *models.Question) ValidationErrors {
	switch q.Type {
	case models.SingleChoice:
		return v.validateChoice(q, true)
	case models.MultipleChoice:
		return v.validateChoice(q, false)
	case models.FillBlank:
		return v.validateFillBlank(q)
	case models.NumericInput:
		return v.validateNumeric(q)
	case models.Ordering:
		return v.validateOrdering(q)
	case models.Matching:
		return v.validateMatching(q)
	default:
		return ValidationErrors{*errors.NewValidationErrorWithRule(
			"type", "unsupported question type", "question_type", string(q.Type))}
	}
}

func (v *QuestionValidator) validateChoice(q *models.Question, single bool) ValidationErrors {
	var errs ValidationErrors
	if len(q.Options) < 2 {
		errs = append(errs, *errors.NewValidationError("options", "must contain at least 2 options", len(q.Options)))
	}

	seen := make(map[string]bool, len(q.Options))
	correct := 0
	for _, opt := range q.Options {
		if opt.ID == "" {
			errs = append(errs, *errors.NewValidationError("options", "option id must not be empty", nil))
			continue
		}
		if seen[opt.ID] {
			errs = append(errs, *errors.NewValidationError("options", "option ids must be unique", opt.ID))
		}
		seen[opt.ID] = true
		if opt.IsCorrect {
			correct++
		}
	}

	if single && correct != 1 {
		errs = append(errs, *errors.NewValidationError("options", "single choice requires exactly one correct option", correct))
	}
	if !single && correct < 1 {
		errs = append(errs, *errors.NewValidationError("options", "multiple choice requires at least one correct option", correct))
	}
	return errs
}

func (v *QuestionValidator) validateFillBlank(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	if len(q.Blanks) == 0 {
		return append(errs, *errors.NewValidationError("blanks", "must contain at least 1 blank", 0))
	}

	seen := make(map[int]bool, len(q.Blanks))
	for _, blank := range q.Blanks {
		if blank.Index < 0 || blank.Index >= len(q.Blanks) {
			errs = append(errs, *errors.NewValidationError("blanks", "blank index out of range", blank.Index))
			continue
		}
		if seen[blank.Index] {
			errs = append(errs, *errors.NewValidationError("blanks", "blank indexes must be unique", blank.Index))
		}
		seen[blank.Index] = true
		if blank.CorrectAnswer == "" {
			errs = append(errs, *errors.NewValidationError("blanks", "correct answer must not be empty", blank.Index))
		}
		if blank.IsNumeric && blank.Tolerance != nil && *blank.Tolerance < 0 {
			errs = append(errs, *errors.NewValidationError("blanks", "tolerance must not be negative", *blank.Tolerance))
		}
	}
	return errs
}

func (v *QuestionValidator) validateNumeric(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	if q.Numeric == nil {
		return append(errs, *errors.NewValidationError("numeric", "numeric spec is required", nil))
	}
	if q.Numeric.Tolerance < 0 {
		errs = append(errs, *errors.NewValidationError("numeric", "tolerance must not be negative", q.Numeric.Tolerance))
	}
	return errs
}

func (v *QuestionValidator) validateOrdering(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	if len(q.Items) < 2 {
		return append(errs, *errors.NewValidationError("items", "must contain at least 2 items", len(q.Items)))
	}

	seenIDs := make(map[string]bool, len(q.Items))
	seenPositions := make(map[int]bool, len(q.Items))
	for _, item := range q.Items {
		if item.ID == "" {
			errs = append(errs, *errors.NewValidationError("items", "item id must not be empty", nil))
			continue
		}
		if seenIDs[item.ID] {
			errs = append(errs, *errors.NewValidationError("items", "item ids must be unique", item.ID))
		}
		seenIDs[item.ID] = true

		// Positions must form the permutation 1..n.
		if item.CorrectPosition < 1 || item.CorrectPosition > len(q.Items) {
			errs = append(errs, *errors.NewValidationError("items", "correct position out of range", item.CorrectPosition))
			continue
		}
		if seenPositions[item.CorrectPosition] {
			errs = append(errs, *errors.NewValidationError("items", "correct positions must be unique", item.CorrectPosition))
		}
		seenPositions[item.CorrectPosition] = true
	}
	return errs
}

func (v *QuestionValidator) validateMatching(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	if len(q.Pairs) < 2 {
		return append(errs, *errors.NewValidationError("pairs", "must contain at least 2 pairs", len(q.Pairs)))
	}

	seen := make(map[string]bool, len(q.Pairs))
	for _, pair := range q.Pairs {
		if pair.ID == "" {
			errs = append(errs, *errors.NewValidationError("pairs", "pair id must not be empty", nil))
			continue
		}
		if seen[pair.ID] {
			errs = append(errs, *errors.NewValidationError("pairs", "pair ids must be unique", pair.ID))
		}
		seen[pair.ID] = true
		if pair.LeftItem == "" || pair.RightItem == "" {
			errs = append(errs, *errors.NewValidationError("pairs", "pair entries must not be empty", pair.ID))
		}
	}
	return errs
}
