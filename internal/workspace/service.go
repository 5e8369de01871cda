// Package workspace ties the composer pieces together: it validates and
// submits generation requests, runs the question draft editor against a
// loaded test, and gates material uploads, wrapping every collaborator call
// in the busy tracker.
package workspace

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/quizforge/composer/internal/backend"
	"github.com/quizforge/composer/internal/busy"
	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/draft"
	"github.com/quizforge/composer/internal/normalize"
	"github.com/quizforge/composer/internal/quiz"
)

// API is the backend collaborator surface the workspace consumes.
// *backend.Client implements it; tests swap in a fake.
type API interface {
	ListTests(ctx context.Context) ([]quiz.TestSummary, error)
	Generate(ctx context.Context, req compose.Request) (quiz.GenerateResult, error)
	TestDetail(ctx context.Context, testID string) (quiz.TestDetail, error)
	CreateQuestion(ctx context.Context, testID string, p quiz.QuestionPayload) (quiz.Question, error)
	UpdateQuestion(ctx context.Context, testID, questionID string, p quiz.QuestionPayload) error
	DeleteQuestion(ctx context.Context, testID, questionID string) error
	DeleteTest(ctx context.Context, testID string) error
	UploadMaterial(ctx context.Context, filename string, r io.Reader) (quiz.Material, error)
	ExportPDF(ctx context.Context, testID string, showAnswers bool) ([]byte, error)
	ExportXML(ctx context.Context, testID string) ([]byte, error)
}

var _ API = (*backend.Client)(nil)

// Service is the composer's working state: the open test snapshot, the
// single draft editor and the staged material reference. Operations are
// serialized by a mutex; concurrent saves race last-writer-wins just as the
// original UI did, there is no fencing.
type Service struct {
	mu   sync.Mutex
	api  API
	busy *busy.Tracker

	current  *quiz.TestDetail
	editor   *draft.Editor
	material *quiz.Material
}

func New(api API, tracker *busy.Tracker) *Service {
	if tracker == nil {
		tracker = busy.New()
	}
	return &Service{api: api, busy: tracker, editor: draft.NewEditor()}
}

// Busy reports the debounced busy-indicator flag.
func (s *Service) Busy() bool { return s.busy.Visible() }

// Tests fetches the caller's test list.
func (s *Service) Tests(ctx context.Context) ([]quiz.TestSummary, error) {
	var out []quiz.TestSummary
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.api.ListTests(ctx)
		return err
	})
	return out, err
}

// Generate validates the form and, only when every check passes, submits the
// request. Validation failures never reach the network.
func (s *Service) Generate(ctx context.Context, form *compose.Form) (quiz.GenerateResult, error) {
	req, err := form.Validate()
	if err != nil {
		return quiz.GenerateResult{}, err
	}
	var out quiz.GenerateResult
	err = s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.api.Generate(ctx, req)
		return err
	})
	return out, err
}

// OpenTest loads a test snapshot and makes it the editing target. Any open
// draft is discarded.
func (s *Service) OpenTest(ctx context.Context, testID string) (quiz.TestDetail, error) {
	var detail quiz.TestDetail
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		detail, err = s.api.TestDetail(ctx, testID)
		return err
	})
	if err != nil {
		return quiz.TestDetail{}, err
	}
	s.mu.Lock()
	s.current = &detail
	s.editor.Cancel()
	s.mu.Unlock()
	return detail, nil
}

// DraftInput is a whole draft state as submitted by the caller in one shot.
type DraftInput struct {
	Text           string   `json:"text"`
	IsClosed       bool     `json:"is_closed"`
	Difficulty     int      `json:"difficulty"`
	Choices        []string `json:"choices"`
	CorrectChoices []string `json:"correct_choices"`
}

// apply replays the input onto the editor through its own operations, so the
// editor's rules (padding, empty-correct filtering, difficulty clamp) all
// take effect. The input is the whole draft: choices and correct answers the
// caller left out are removed, including ones seeded from the existing
// question on the edit path.
func (in DraftInput) apply(e *draft.Editor) {
	e.EditText(in.Text)
	e.ToggleClosed(in.IsClosed)
	e.SetDifficulty(in.Difficulty)
	e.SetChoices(in.Choices)
	e.SetCorrect(in.CorrectChoices)
}

// AddQuestion runs the add path of the draft editor and submits the cleaned
// payload. The new question lands wherever the server puts it (typically
// last), so the snapshot is refetched rather than patched. A collaborator
// failure keeps the draft open.
func (s *Service) AddQuestion(ctx context.Context, testID string, in DraftInput) (quiz.TestDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.StartAdd()
	in.apply(s.editor)
	out, err := s.editor.Save()
	if err != nil {
		s.editor.Cancel()
		return quiz.TestDetail{}, err
	}

	err = s.busy.Run(ctx, func(ctx context.Context) error {
		if _, err := s.api.CreateQuestion(ctx, testID, out.Payload); err != nil {
			return err
		}
		detail, err := s.api.TestDetail(ctx, testID)
		if err != nil {
			return err
		}
		s.current = &detail
		return nil
	})
	if err != nil {
		// draft survives for a retry
		return quiz.TestDetail{}, err
	}
	s.editor.Finish()
	return *s.current, nil
}

// UpdateQuestion runs the edit path against a question of the open test and
// submits the delta. On success the local snapshot is patched in place
// without reordering; the backend is not refetched.
func (s *Service) UpdateQuestion(ctx context.Context, testID, questionID string, in DraftInput) (quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCurrent(ctx, testID); err != nil {
		return quiz.Question{}, err
	}
	target, ok := s.findQuestion(questionID)
	if !ok {
		return quiz.Question{}, &backend.APIError{Status: 404, Detail: "question not found"}
	}

	s.editor.StartEdit(target)
	in.apply(s.editor)
	out, err := s.editor.Save()
	if err != nil {
		s.editor.Cancel()
		return quiz.Question{}, err
	}

	err = s.busy.Run(ctx, func(ctx context.Context) error {
		return s.api.UpdateQuestion(ctx, testID, questionID, out.Payload)
	})
	if err != nil {
		return quiz.Question{}, err
	}
	s.editor.Finish()

	updated := mergeQuestion(target, out.Payload)
	for i := range s.current.Questions {
		if s.current.Questions[i].ID == questionID {
			s.current.Questions[i] = updated
			break
		}
	}
	return updated, nil
}

// DeleteQuestion removes a question and refetches the snapshot.
func (s *Service) DeleteQuestion(ctx context.Context, testID, questionID string) (quiz.TestDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detail quiz.TestDetail
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		if err := s.api.DeleteQuestion(ctx, testID, questionID); err != nil {
			return err
		}
		var err error
		detail, err = s.api.TestDetail(ctx, testID)
		return err
	})
	if err != nil {
		return quiz.TestDetail{}, err
	}
	s.current = &detail
	return detail, nil
}

// DeleteTest removes a test; a matching open snapshot is dropped.
func (s *Service) DeleteTest(ctx context.Context, testID string) error {
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		return s.api.DeleteTest(ctx, testID)
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.current != nil && s.current.TestID == testID {
		s.current = nil
		s.editor.Cancel()
	}
	s.mu.Unlock()
	return nil
}

// UploadMaterial stages a source document. An upload whose extraction did
// not finish cleanly is discarded and reported as a recoverable error, so
// the caller can re-upload.
func (s *Service) UploadMaterial(ctx context.Context, filename string, r io.Reader) (quiz.Material, error) {
	var m quiz.Material
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.api.UploadMaterial(ctx, filename, r)
		return err
	})
	if err != nil {
		return quiz.Material{}, err
	}
	if m.Status != quiz.MaterialDone {
		reason := m.ProcessingError
		if reason == "" {
			reason = fmt.Sprintf("material processing ended as %q", m.Status)
		}
		s.mu.Lock()
		s.material = nil
		s.mu.Unlock()
		return quiz.Material{}, &backend.APIError{Status: 422, Detail: reason}
	}
	s.mu.Lock()
	s.material = &m
	s.mu.Unlock()
	return m, nil
}

// Material returns the staged upload, if any.
func (s *Service) Material() (quiz.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material == nil {
		return quiz.Material{}, false
	}
	return *s.material, true
}

// MaterialSource builds a compose.Source from the staged upload.
func (s *Service) MaterialSource() (compose.Source, bool) {
	m, ok := s.Material()
	if !ok {
		return compose.Source{}, false
	}
	return compose.Source{
		Kind:    compose.SourceMaterial,
		Content: m.ExtractedText,
		FileRef: m.FileRef,
	}, true
}

// ExportPDF passes the backend-rendered PDF bytes through.
func (s *Service) ExportPDF(ctx context.Context, testID string, showAnswers bool) ([]byte, error) {
	var b []byte
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.api.ExportPDF(ctx, testID, showAnswers)
		return err
	})
	return b, err
}

// ExportXML passes the backend-rendered XML bytes through.
func (s *Service) ExportXML(ctx context.Context, testID string) ([]byte, error) {
	var b []byte
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.api.ExportXML(ctx, testID)
		return err
	})
	return b, err
}

// EditorState exposes the draft editor state for inspection.
func (s *Service) EditorState() draft.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.State()
}

func (s *Service) ensureCurrent(ctx context.Context, testID string) error {
	if s.current != nil && s.current.TestID == testID {
		return nil
	}
	var detail quiz.TestDetail
	err := s.busy.Run(ctx, func(ctx context.Context) error {
		var err error
		detail, err = s.api.TestDetail(ctx, testID)
		return err
	})
	if err != nil {
		return err
	}
	s.current = &detail
	return nil
}

func (s *Service) findQuestion(questionID string) (quiz.Question, bool) {
	for _, q := range s.current.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return quiz.Question{}, false
}

// mergeQuestion folds a saved payload back into the snapshot entry.
func mergeQuestion(q quiz.Question, p quiz.QuestionPayload) quiz.Question {
	q.Text = p.Text
	q.IsClosed = p.IsClosed
	q.Difficulty = p.Difficulty
	q.Choices = normalize.StringList(p.Choices)
	q.CorrectChoices = normalize.StringList(p.CorrectChoices)
	return q
}
