// Package devbackend is an in-memory stand-in for the quiz-generation
// service, mounted in offline mode and used by client tests. It implements
// the same wire surface the real service exposes, with canned generation
// instead of an LLM and an in-process map instead of a database.
package devbackend

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/normalize"
	"github.com/quizforge/composer/internal/quiz"
)

type storedTest struct {
	quiz.TestDetail
	createdAt time.Time
}

type Server struct {
	mu        sync.RWMutex
	tests     map[string]*storedTest
	materials map[string]quiz.Material
}

func New() *Server {
	return &Server{
		tests:     map[string]*storedTest{},
		materials: map[string]quiz.Material{},
	}
}

// Router mounts the collaborator API. Auth is the caller's concern: offline
// mode wraps this router in the local JWT middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/users/me/tests", s.listTests)
	r.Post("/tests/generate", s.generate)
	r.Route("/tests/{testID}", func(tr chi.Router) {
		tr.Get("/", s.getTest)
		tr.Delete("/", s.deleteTest)
		tr.Post("/questions", s.createQuestion)
		tr.Delete("/questions/{questionID}", s.deleteQuestion)
		tr.Patch("/edit/{questionID}", s.updateQuestion)
		tr.Get("/export/pdf", s.exportPDF)
		tr.Get("/export/xml", s.exportXML)
	})
	r.Post("/materials/upload", s.uploadMaterial)
	return r
}

func (s *Server) listTests(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]quiz.TestSummary, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, quiz.TestSummary{ID: t.TestID, Title: t.Title, CreatedAt: t.createdAt})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, out)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req compose.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.FileRef == "" {
		detail(w, http.StatusBadRequest, "provide text or file_id")
		return
	}
	if req.OpenCount < 0 || req.Easy < 0 || req.Medium < 0 || req.Hard < 0 {
		detail(w, http.StatusBadRequest, "counts must be non-negative")
		return
	}
	for _, n := range req.ClosedCounts {
		if n < 0 {
			detail(w, http.StatusBadRequest, "counts must be non-negative")
			return
		}
	}
	if req.Easy+req.Medium+req.Hard != req.Total() {
		detail(w, http.StatusBadRequest, "difficulty counts must sum to the requested total")
		return
	}

	t := &storedTest{
		TestDetail: quiz.TestDetail{
			TestID: uuid.NewString(),
			Title:  titleFor(req.Text),
		},
		createdAt: time.Now(),
	}
	levels := levelSequence(req)
	i := 0
	next := func() int {
		if i >= len(levels) {
			return 1
		}
		l := levels[i]
		i++
		return l
	}
	for _, kind := range compose.ClosedKinds {
		for n := 0; n < req.ClosedCounts[kind]; n++ {
			t.Questions = append(t.Questions, cannedClosed(kind, next()))
		}
	}
	for n := 0; n < req.OpenCount; n++ {
		t.Questions = append(t.Questions, quiz.Question{
			ID:         uuid.NewString(),
			Text:       fmt.Sprintf("Discuss an aspect of the source material (question %d).", len(t.Questions)+1),
			IsClosed:   false,
			Difficulty: next(),
		})
	}

	s.mu.Lock()
	s.tests[t.TestID] = t
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, quiz.GenerateResult{TestID: t.TestID, QuestionCount: len(t.Questions)})
}

func (s *Server) getTest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	s.mu.RUnlock()
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	writeJSON(w, t.TestDetail)
}

func (s *Server) deleteTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "testID")
	s.mu.Lock()
	_, ok := s.tests[id]
	delete(s.tests, id)
	s.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var p quiz.QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		detail(w, http.StatusBadRequest, "bad json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	q := quiz.Question{
		ID:             uuid.NewString(),
		Text:           p.Text,
		IsClosed:       p.IsClosed,
		Difficulty:     p.Difficulty,
		Choices:        normalize.StringList(p.Choices),
		CorrectChoices: normalize.StringList(p.CorrectChoices),
	}
	t.Questions = append(t.Questions, q)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, q)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var p quiz.QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		detail(w, http.StatusBadRequest, "bad json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	qid := chi.URLParam(r, "questionID")
	for i := range t.Questions {
		if t.Questions[i].ID == qid {
			t.Questions[i].Text = p.Text
			t.Questions[i].IsClosed = p.IsClosed
			t.Questions[i].Difficulty = p.Difficulty
			t.Questions[i].Choices = normalize.StringList(p.Choices)
			t.Questions[i].CorrectChoices = normalize.StringList(p.CorrectChoices)
			writeJSON(w, map[string]string{"msg": "Question updated"})
			return
		}
	}
	detail(w, http.StatusNotFound, "question not found")
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	qid := chi.URLParam(r, "questionID")
	for i := range t.Questions {
		if t.Questions[i].ID == qid {
			t.Questions = append(t.Questions[:i], t.Questions[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	detail(w, http.StatusNotFound, "question not found")
}

// uploadMaterial accepts plain-text formats and marks anything else as a
// failed extraction, which is exactly the recoverable-error path the
// composer has to handle.
func (s *Server) uploadMaterial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		detail(w, http.StatusBadRequest, "bad multipart form")
		return
	}
	f, hdr, err := r.FormFile("uploaded_file")
	if err != nil {
		detail(w, http.StatusBadRequest, "missing uploaded_file")
		return
	}
	defer f.Close()

	m := quiz.Material{
		FileRef:  uuid.NewString(),
		Filename: hdr.Filename,
	}
	switch {
	case strings.HasSuffix(hdr.Filename, ".txt"), strings.HasSuffix(hdr.Filename, ".md"):
		body, err := io.ReadAll(f)
		if err != nil {
			detail(w, http.StatusInternalServerError, "read upload")
			return
		}
		m.Status = quiz.MaterialDone
		m.ExtractedText = string(body)
	default:
		m.Status = quiz.MaterialFailed
		m.ProcessingError = "unsupported file type in offline mode"
	}

	s.mu.Lock()
	s.materials[m.FileRef] = m
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

type xmlChoice struct {
	Value   string `xml:",chardata"`
	Correct bool   `xml:"correct,attr"`
}

type xmlQuestion struct {
	ID         string      `xml:"id,attr"`
	Difficulty int         `xml:"difficulty,attr"`
	Closed     bool        `xml:"closed,attr"`
	Text       string      `xml:"text"`
	Choices    []xmlChoice `xml:"choices>choice,omitempty"`
}

type xmlTest struct {
	XMLName   xml.Name      `xml:"test"`
	ID        string        `xml:"id,attr"`
	Title     string        `xml:"title"`
	Questions []xmlQuestion `xml:"questions>question"`
}

func (s *Server) exportXML(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	s.mu.RUnlock()
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	doc := xmlTest{ID: t.TestID, Title: t.Title}
	for _, q := range t.Questions {
		xq := xmlQuestion{ID: q.ID, Difficulty: q.Difficulty, Closed: q.IsClosed, Text: q.Text}
		for _, c := range q.Choices {
			correct := false
			for _, cc := range q.CorrectChoices {
				if cc == c {
					correct = true
					break
				}
			}
			xq.Choices = append(xq.Choices, xmlChoice{Value: c, Correct: correct})
		}
		doc.Questions = append(doc.Questions, xq)
	}
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		detail(w, http.StatusInternalServerError, "marshal xml")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%s.xml"`, t.TestID))
	_, _ = w.Write(append([]byte(xml.Header), b...))
}

// exportPDF emits a placeholder document: offline mode has no renderer, and
// the composer only passes bytes through anyway.
func (s *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	t, ok := s.tests[chi.URLParam(r, "testID")]
	s.mu.RUnlock()
	if !ok {
		detail(w, http.StatusNotFound, "test not found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%s.pdf"`, t.TestID))
	fmt.Fprintf(w, "%%PDF-1.4\n%% offline placeholder for test %s (%d questions)\n", t.TestID, len(t.Questions))
}

/* ---------------- helpers ---------------- */

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

func titleFor(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Generated test"
	}
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	return "Test: " + strings.Join(words, " ")
}

// levelSequence flattens the difficulty spread into one level per question.
func levelSequence(req compose.Request) []int {
	out := make([]int, 0, req.Total())
	for n := 0; n < req.Easy; n++ {
		out = append(out, 1)
	}
	for n := 0; n < req.Medium; n++ {
		out = append(out, 2)
	}
	for n := 0; n < req.Hard; n++ {
		out = append(out, 3)
	}
	// validated requests already fill the sequence exactly
	for len(out) < req.Total() {
		out = append(out, 1)
	}
	return out
}

func cannedClosed(kind compose.ClosedKind, level int) quiz.Question {
	q := quiz.Question{
		ID:         uuid.NewString(),
		IsClosed:   true,
		Difficulty: level,
	}
	switch kind {
	case compose.TrueFalse:
		q.Text = "The source material supports this statement."
		q.Choices = normalize.StringList{"True", "False"}
		q.CorrectChoices = normalize.StringList{"True"}
	case compose.MultiChoice:
		q.Text = "Select every option supported by the source material."
		q.Choices = normalize.StringList{"Option A", "Option B", "Option C", "Option D"}
		q.CorrectChoices = normalize.StringList{"Option A", "Option C"}
	default:
		q.Text = "Select the option best supported by the source material."
		q.Choices = normalize.StringList{"Option A", "Option B", "Option C", "Option D"}
		q.CorrectChoices = normalize.StringList{"Option A"}
	}
	return q
}
