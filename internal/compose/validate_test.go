package compose_test

import (
	"errors"
	"testing"

	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/quiz"
)

func reasonOf(t *testing.T, err error) quiz.Reason {
	t.Helper()
	var ve *quiz.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *quiz.ValidationError", err)
	}
	return ve.Reason
}

func TestValidateOrderedChecks(t *testing.T) {
	tests := []struct {
		name string
		form func() *compose.Form
		want quiz.Reason
	}{
		{
			"empty content wins first",
			func() *compose.Form {
				f := compose.NewForm()
				f.SetSource(compose.Source{Kind: compose.SourceText, Content: "   "})
				return f
			},
			quiz.EmptyContent,
		},
		{
			"no questions",
			func() *compose.Form {
				f := compose.NewForm()
				f.SetSource(compose.Source{Kind: compose.SourceText, Content: "abc"})
				return f
			},
			quiz.NoQuestionsRequested,
		},
		{
			"no difficulty",
			func() *compose.Form {
				f := compose.NewForm()
				f.SetSource(compose.Source{Kind: compose.SourceText, Content: "abc"})
				f.SetOpenCount(2)
				return f
			},
			quiz.NoDifficultyAssigned,
		},
		{
			"difficulty mismatch",
			func() *compose.Form {
				f := compose.NewForm()
				f.SetSource(compose.Source{Kind: compose.SourceText, Content: "abc"})
				f.SetClosedCount(compose.TrueFalse, 2)
				f.SetOpenCount(1)
				f.SetDifficulty(compose.Easy, 1)
				f.SetDifficulty(compose.Hard, 1)
				return f
			},
			quiz.DifficultyMismatch,
		},
		{
			"material without reference",
			func() *compose.Form {
				f := compose.NewForm()
				f.SetSource(compose.Source{Kind: compose.SourceMaterial, Content: "abc"})
				f.SetOpenCount(1)
				f.SetDifficulty(compose.Easy, 1)
				return f
			},
			quiz.MissingMaterialReference,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.form().Validate()
			if err == nil {
				t.Fatal("Validate succeeded, want failure")
			}
			if got := reasonOf(t, err); got != tc.want {
				t.Fatalf("reason = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestValidateSuccess(t *testing.T) {
	f := compose.NewForm()
	f.SetSource(compose.Source{Kind: compose.SourceText, Content: "abc"})
	f.SetClosedCount(compose.TrueFalse, 2)
	f.SetClosedCount(compose.SingleChoice, 0)
	f.SetOpenCount(1)
	f.SetDifficulty(compose.Easy, 1)
	f.SetDifficulty(compose.Medium, 1)
	f.SetDifficulty(compose.Hard, 1)

	req, err := f.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(req.ClosedCounts) != 1 || req.ClosedCounts[compose.TrueFalse] != 2 {
		t.Fatalf("closed counts = %v, want only true_false:2", req.ClosedCounts)
	}
	if req.OpenCount != 1 || req.Total() != 3 {
		t.Fatalf("open=%d total=%d, want 1/3", req.OpenCount, req.Total())
	}
	if req.Text != "abc" || req.FileRef != "" {
		t.Fatalf("source fields = %q/%q", req.Text, req.FileRef)
	}
}

func TestValidateMismatchCarriesTotals(t *testing.T) {
	f := compose.NewForm()
	f.SetSource(compose.Source{Kind: compose.SourceText, Content: "abc"})
	f.SetClosedCount(compose.TrueFalse, 2)
	f.SetOpenCount(1)
	f.SetDifficulty(compose.Easy, 1)
	f.SetDifficulty(compose.Hard, 1)

	_, err := f.Validate()
	var ve *quiz.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if ve.Got != 2 || ve.Want != 3 {
		t.Fatalf("mismatch got/want = %d/%d, want 2/3", ve.Got, ve.Want)
	}
}

func TestValidateMaterialRequest(t *testing.T) {
	f := compose.NewForm()
	f.SetSource(compose.Source{Kind: compose.SourceMaterial, Content: "extracted text", FileRef: "f-1"})
	f.SetOpenCount(2)
	f.SetDifficulty(compose.Medium, 2)

	req, err := f.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.FileRef != "f-1" || req.Text != "extracted text" {
		t.Fatalf("request source = %q/%q", req.FileRef, req.Text)
	}
}
