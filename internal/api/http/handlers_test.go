package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/quizforge/composer/internal/api/http"
	"github.com/quizforge/composer/internal/backend"
	"github.com/quizforge/composer/internal/busy"
	"github.com/quizforge/composer/internal/devbackend"
	"github.com/quizforge/composer/internal/quiz"
	"github.com/quizforge/composer/internal/workspace"
)

// newGateway wires the full stack: handlers -> workspace -> real client ->
// offline backend.
func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	dev := httptest.NewServer(devbackend.New().Router())
	t.Cleanup(dev.Close)

	client := backend.New(dev.URL, backend.StaticToken("dev"), dev.Client())
	ws := workspace.New(client, busy.NewWithDelays(time.Millisecond, time.Millisecond))

	r := chi.NewRouter()
	api.Mount(r, ws)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestValidateEndpoint(t *testing.T) {
	srv := newGateway(t)

	res := postJSON(t, srv.URL+"/composer/validate", `{
		"closed_counts": {"true_false": 2},
		"num_open": 1,
		"difficulty": {"easy": 1, "medium": 0, "hard": 1},
		"source": {"kind": "text", "content": "abc"}
	}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var out struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Valid || out.Reason != string(quiz.DifficultyMismatch) {
		t.Fatalf("verdict = %+v, want difficulty_mismatch", out)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	srv := newGateway(t)

	res := postJSON(t, srv.URL+"/tests/generate", `{
		"closed_counts": {"true_false": 2},
		"num_open": 1,
		"difficulty": {"easy": 1, "medium": 1, "hard": 1},
		"source": {"kind": "text", "content": "photosynthesis"}
	}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var gen quiz.GenerateResult
	if err := json.NewDecoder(res.Body).Decode(&gen); err != nil {
		t.Fatal(err)
	}
	if gen.QuestionCount != 3 {
		t.Fatalf("count = %d", gen.QuestionCount)
	}

	detail, err := http.Get(srv.URL + "/tests/" + gen.TestID)
	if err != nil {
		t.Fatal(err)
	}
	defer detail.Body.Close()
	if detail.StatusCode != http.StatusOK {
		t.Fatalf("detail status = %d", detail.StatusCode)
	}
}

func TestValidationErrorShape(t *testing.T) {
	srv := newGateway(t)

	res := postJSON(t, srv.URL+"/tests/generate", `{
		"source": {"kind": "text", "content": "   "}
	}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
	var body struct {
		Detail string `json:"detail"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Reason != string(quiz.EmptyContent) || body.Detail == "" {
		t.Fatalf("body = %+v", body)
	}
}

// Raw API callers can send counts the interactive form never produces; the
// setters must apply before validation so negatives are ignored rather than
// cancelling against the difficulty sum.
func TestGenerateRejectsNegativeCounts(t *testing.T) {
	srv := newGateway(t)

	res := postJSON(t, srv.URL+"/tests/generate", `{
		"closed_counts": {"true_false": 3},
		"num_open": -2,
		"difficulty": {"easy": 1},
		"source": {"kind": "text", "content": "abc"}
	}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Reason != string(quiz.DifficultyMismatch) {
		t.Fatalf("reason = %q, want difficulty_mismatch", body.Reason)
	}
}

func TestQuestionFlowEndToEnd(t *testing.T) {
	srv := newGateway(t)

	res := postJSON(t, srv.URL+"/tests/generate", `{
		"num_open": 1,
		"difficulty": {"easy": 1},
		"source": {"kind": "text", "content": "abc"}
	}`)
	var gen quiz.GenerateResult
	if err := json.NewDecoder(res.Body).Decode(&gen); err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	res = postJSON(t, srv.URL+"/tests/"+gen.TestID+"/questions", `{
		"text": "Pick A", "is_closed": true, "difficulty": 1,
		"choices": ["A", "", "B", ""], "correct_choices": ["A"]
	}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", res.StatusCode)
	}
	var detail quiz.TestDetail
	if err := json.NewDecoder(res.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if len(detail.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(detail.Questions))
	}
	added := detail.Questions[1]
	if len(added.Choices) != 2 {
		t.Fatalf("cleaned choices = %v", added.Choices)
	}
}
