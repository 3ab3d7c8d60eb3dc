package models

// Answer payloads collected during a session, one shape per question
// type. The session stores them untyped; the grader type-asserts and
// treats any mismatch as an incorrect answer, never an error.

type ChoiceAnswer struct {
	SelectedOptions []string `json:"selected_options"`
}

type FillBlankAnswer struct {
	Values []string `json:"values"` // index-aligned with the question's blanks
}

type NumericAnswer struct {
	Value string `json:"value"` // raw learner input, parsed at grading time
}

type OrderingAnswer struct {
	Order []string `json:"order"` // item ids in the learner's chosen order
}

type MatchingAnswer struct {
	Pairs map[string]string `json:"pairs"` // left id -> chosen right id
}
