package quiz

import "fmt"

// Reason identifies one rule a request or draft can violate. Validation is
// client-local: a violated rule never reaches the network.
type Reason string

const (
	// composition rules
	EmptyContent             Reason = "empty_content"
	NoQuestionsRequested     Reason = "no_questions_requested"
	NoDifficultyAssigned     Reason = "no_difficulty_assigned"
	DifficultyMismatch       Reason = "difficulty_mismatch"
	MissingMaterialReference Reason = "missing_material_reference"

	// draft rules
	EmptyQuestionText       Reason = "empty_question_text"
	NoChoicesProvided       Reason = "no_choices_provided"
	NoCorrectAnswerSelected Reason = "no_correct_answer_selected"
)

// ValidationError reports a violated rule with a human-readable message.
// Got/Want are only set for DifficultyMismatch.
type ValidationError struct {
	Reason  Reason
	Message string
	Got     int
	Want    int
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError with a plain message.
func Invalid(r Reason, msg string) *ValidationError {
	return &ValidationError{Reason: r, Message: msg}
}

// Mismatch builds the DifficultyMismatch error carrying both totals.
func Mismatch(got, want int) *ValidationError {
	return &ValidationError{
		Reason:  DifficultyMismatch,
		Message: fmt.Sprintf("difficulty counts sum to %d but %d questions were requested", got, want),
		Got:     got,
		Want:    want,
	}
}
