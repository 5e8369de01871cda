package compose

import (
	"strings"

	"github.com/quizforge/composer/internal/quiz"
)

// Validate runs the ordered composition checks and, when they all pass,
// emits the immutable request. The first violated rule wins and is returned
// as a *quiz.ValidationError; the form itself is left untouched either way.
//
// Check order is part of the contract:
//  1. trimmed source content must be non-empty
//  2. at least one question must be requested
//  3. at least one difficulty bucket must be assigned
//  4. the difficulty sum must equal the requested total
//  5. a material source must carry its file reference
func (f *Form) Validate() (Request, error) {
	content := strings.TrimSpace(f.Source.Content)
	if content == "" {
		return Request{}, quiz.Invalid(quiz.EmptyContent, "provide the text the questions are generated from")
	}

	total := f.TotalRequested()
	if total == 0 {
		return Request{}, quiz.Invalid(quiz.NoQuestionsRequested, "request at least one question")
	}

	diffTotal := f.Difficulty.Total()
	if diffTotal == 0 {
		return Request{}, quiz.Invalid(quiz.NoDifficultyAssigned, "assign the questions to difficulty levels")
	}
	if diffTotal != total {
		return Request{}, quiz.Mismatch(diffTotal, total)
	}

	if f.Source.Kind == SourceMaterial && f.Source.FileRef == "" {
		return Request{}, quiz.Invalid(quiz.MissingMaterialReference, "upload a material before generating")
	}

	req := Request{
		OpenCount: f.OpenCount,
		Easy:      f.Difficulty.Easy,
		Medium:    f.Difficulty.Medium,
		Hard:      f.Difficulty.Hard,
		Text:      content,
	}
	for k, n := range f.ClosedCounts {
		if n > 0 {
			if req.ClosedCounts == nil {
				req.ClosedCounts = map[ClosedKind]int{}
			}
			req.ClosedCounts[k] = n
		}
	}
	if f.Source.Kind == SourceMaterial {
		req.FileRef = f.Source.FileRef
	}
	return req, nil
}
