package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quizforge/attempt-service/internal/models"
)

// Validator combines struct-tag validation with the per-type question
// payload rules.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateQuestion performs complete validation of a question: struct
// tags first, then the type-specific payload rules.
func (v *Validator) ValidateQuestion(q *models.Question) error {
	if err := v.structValidator.Struct(q); err != nil {
		return ToValidationErrors(err)
	}
	if errs := v.questionValidator.Validate(q); len(errs) > 0 {
		return errs
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("show_answers_policy", validateShowAnswersPolicy)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultipleChoice,
		models.FillBlank,
		models.NumericInput,
		models.Ordering,
		models.Matching,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func validateShowAnswersPolicy(fl validator.FieldLevel) bool {
	validPolicies := []models.ShowAnswersPolicy{
		models.ShowEachQuestion,
		models.ShowEndOfAttempt,
		models.ShowNever,
	}

	value := fl.Field().String()
	for _, validPolicy := range validPolicies {
		if string(validPolicy) == value {
			return true
		}
	}
	return false
}
