// Package quiz holds the shared model types and the validation error
// taxonomy for the composer. Entities here are snapshots owned by the
// backend; the composer only reads them and writes deltas.
package quiz

import (
	"time"

	"github.com/quizforge/composer/internal/normalize"
)

// Question is a backend-owned question snapshot. Choices and CorrectChoices
// decode through normalize.StringList because rows arrive in whatever shape
// they were stored in (array, JSON-encoded string, bare scalar, null).
type Question struct {
	ID             string               `json:"id"`
	Text           string               `json:"text"`
	IsClosed       bool                 `json:"is_closed"`
	Difficulty     int                  `json:"difficulty"`
	Choices        normalize.StringList `json:"choices,omitempty"`
	CorrectChoices normalize.StringList `json:"correct_choices,omitempty"`
}

// TestSummary is one row of the user's test list.
type TestSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// TestDetail is a full test snapshot.
type TestDetail struct {
	TestID    string     `json:"test_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// GenerateResult is the backend's answer to a generation request.
type GenerateResult struct {
	TestID        string `json:"test_id"`
	QuestionCount int    `json:"num_questions"`
}

// QuestionPayload is the cleaned delta sent to the backend when creating or
// updating a question. For open questions Choices and CorrectChoices are nil
// and marshal as null.
type QuestionPayload struct {
	Text           string   `json:"text"`
	IsClosed       bool     `json:"is_closed"`
	Difficulty     int      `json:"difficulty"`
	Choices        []string `json:"choices"`
	CorrectChoices []string `json:"correct_choices"`
}

// MaterialStatus is the processing state of an uploaded material.
type MaterialStatus string

const (
	MaterialPending MaterialStatus = "pending"
	MaterialDone    MaterialStatus = "done"
	MaterialFailed  MaterialStatus = "failed"
)

// Material describes an uploaded source document and its extraction outcome.
type Material struct {
	FileRef         string         `json:"file_id"`
	Filename        string         `json:"filename"`
	Status          MaterialStatus `json:"processing_status"`
	ExtractedText   string         `json:"extracted_text,omitempty"`
	ProcessingError string         `json:"processing_error,omitempty"`
}
