// Round-trips the real backend client against the offline server.
package devbackend_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quizforge/composer/internal/backend"
	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/devbackend"
	"github.com/quizforge/composer/internal/quiz"
)

func newClient(t *testing.T) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(devbackend.New().Router())
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, backend.StaticToken("dev"), srv.Client())
}

func TestGenerateRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	res, err := c.Generate(ctx, compose.Request{
		ClosedCounts: map[compose.ClosedKind]int{compose.TrueFalse: 2},
		OpenCount:    1,
		Easy:         1, Medium: 1, Hard: 1,
		Text: "photosynthesis basics",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.QuestionCount != 3 {
		t.Fatalf("question count = %d, want 3", res.QuestionCount)
	}

	detail, err := c.TestDetail(ctx, res.TestID)
	if err != nil {
		t.Fatalf("TestDetail: %v", err)
	}
	closed, open := 0, 0
	for _, q := range detail.Questions {
		if q.IsClosed {
			closed++
		} else {
			open++
		}
	}
	if closed != 2 || open != 1 {
		t.Fatalf("closed/open = %d/%d, want 2/1", closed, open)
	}

	tests, err := c.ListTests(ctx)
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(tests) != 1 || tests[0].ID != res.TestID {
		t.Fatalf("list = %+v", tests)
	}
}

func TestGenerateRejectsMismatch(t *testing.T) {
	c := newClient(t)
	_, err := c.Generate(context.Background(), compose.Request{
		OpenCount: 3, Easy: 1, Hard: 1,
		Text: "abc",
	})
	if err == nil {
		t.Fatal("mismatched request accepted")
	}
}

// A negative count can make the totals agree while the per-kind counts do
// not; the server must refuse instead of generating from skewed numbers.
func TestGenerateRejectsNegativeCounts(t *testing.T) {
	c := newClient(t)
	_, err := c.Generate(context.Background(), compose.Request{
		ClosedCounts: map[compose.ClosedKind]int{compose.TrueFalse: 3},
		OpenCount:    -2,
		Easy:         1,
		Text:         "abc",
	})
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *backend.APIError", err)
	}
	if apiErr.Status != 400 {
		t.Fatalf("status = %d, want 400", apiErr.Status)
	}
}

func TestQuestionLifecycle(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	res, err := c.Generate(ctx, compose.Request{
		OpenCount: 1, Easy: 1, Text: "abc",
	})
	if err != nil {
		t.Fatal(err)
	}

	q, err := c.CreateQuestion(ctx, res.TestID, quiz.QuestionPayload{
		Text: "2+2?", IsClosed: true, Difficulty: 1,
		Choices: []string{"3", "4"}, CorrectChoices: []string{"4"},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	if err := c.UpdateQuestion(ctx, res.TestID, q.ID, quiz.QuestionPayload{
		Text: "2+3?", IsClosed: true, Difficulty: 2,
		Choices: []string{"4", "5"}, CorrectChoices: []string{"5"},
	}); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}

	detail, err := c.TestDetail(ctx, res.TestID)
	if err != nil {
		t.Fatal(err)
	}
	var found *quiz.Question
	for i := range detail.Questions {
		if detail.Questions[i].ID == q.ID {
			found = &detail.Questions[i]
		}
	}
	if found == nil || found.Text != "2+3?" || found.Difficulty != 2 {
		t.Fatalf("updated question = %+v", found)
	}

	if err := c.DeleteQuestion(ctx, res.TestID, q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if err := c.DeleteTest(ctx, res.TestID); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	if _, err := c.TestDetail(ctx, res.TestID); err == nil {
		t.Fatal("deleted test still readable")
	}
}

func TestUploadExtractionGate(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	m, err := c.UploadMaterial(ctx, "notes.txt", strings.NewReader("chapter one"))
	if err != nil {
		t.Fatalf("UploadMaterial: %v", err)
	}
	if m.Status != quiz.MaterialDone || m.ExtractedText != "chapter one" {
		t.Fatalf("material = %+v", m)
	}

	m, err = c.UploadMaterial(ctx, "scan.bin", strings.NewReader("\x00\x01"))
	if err != nil {
		t.Fatalf("UploadMaterial: %v", err)
	}
	if m.Status != quiz.MaterialFailed || m.ProcessingError == "" {
		t.Fatalf("binary upload = %+v, want failed with a reason", m)
	}
}

func TestExports(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	res, err := c.Generate(ctx, compose.Request{
		ClosedCounts: map[compose.ClosedKind]int{compose.SingleChoice: 1},
		Easy:         1, Text: "abc",
	})
	if err != nil {
		t.Fatal(err)
	}

	xmlBytes, err := c.ExportXML(ctx, res.TestID)
	if err != nil {
		t.Fatalf("ExportXML: %v", err)
	}
	if !strings.Contains(string(xmlBytes), "<test") {
		t.Fatalf("xml = %s", xmlBytes)
	}

	pdfBytes, err := c.ExportPDF(ctx, res.TestID, false)
	if err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	if !strings.HasPrefix(string(pdfBytes), "%PDF") {
		t.Fatalf("pdf prefix = %q", string(pdfBytes[:8]))
	}
}
