// Package draft implements the per-question edit buffer: a small state
// machine that moves between viewing, editing an existing question and
// composing a new one, with choice-list and correct-answer bookkeeping.
package draft

import (
	"errors"
	"strings"

	"github.com/quizforge/composer/internal/quiz"
	"github.com/samber/lo"
)

// State is the editor's current mode.
type State int

const (
	Viewing State = iota
	EditingExisting
	AddingNew
)

// Closed drafts always render at least this many choice slots; the padding
// placeholders are stripped again before submission.
const minChoiceSlots = 4

// ErrNoDraft is returned by Save when nothing is being edited.
var ErrNoDraft = errors.New("no draft open")

// Draft is the transient edit buffer for one question. TargetID is empty for
// a new question. Choices is only meaningful while IsClosed.
type Draft struct {
	TargetID   string
	Text       string
	IsClosed   bool
	Difficulty int
	Choices    []string
	Correct    []string
}

// Editor owns at most one Draft at a time. Starting a new edit or add while
// a draft is open discards the previous draft (last writer wins).
type Editor struct {
	state State
	draft Draft
}

func NewEditor() *Editor { return &Editor{} }

func (e *Editor) State() State { return e.state }

// Draft returns a copy of the open draft, or false when viewing.
func (e *Editor) Draft() (Draft, bool) {
	if e.state == Viewing {
		return Draft{}, false
	}
	d := e.draft
	d.Choices = append([]string(nil), e.draft.Choices...)
	d.Correct = append([]string(nil), e.draft.Correct...)
	return d, true
}

// StartEdit opens a draft seeded from an existing question snapshot.
func (e *Editor) StartEdit(q quiz.Question) {
	d := Draft{
		TargetID:   q.ID,
		Text:       q.Text,
		IsClosed:   q.IsClosed,
		Difficulty: clampLevel(q.Difficulty),
		Choices:    append([]string(nil), q.Choices...),
		Correct:    append([]string(nil), q.CorrectChoices...),
	}
	if d.IsClosed {
		d.Choices = PadChoices(d.Choices)
	}
	e.state = EditingExisting
	e.draft = d
}

// StartAdd opens a fresh draft for a new closed question.
func (e *Editor) StartAdd() {
	e.state = AddingNew
	e.draft = Draft{
		IsClosed:   true,
		Difficulty: 1,
		Choices:    PadChoices(nil),
		Correct:    []string{},
	}
}

// Cancel discards the draft unconditionally.
func (e *Editor) Cancel() {
	e.state = Viewing
	e.draft = Draft{}
}

// EditText replaces the draft text. No-op while viewing, as are all the
// mutators below.
func (e *Editor) EditText(s string) {
	if e.state == Viewing {
		return
	}
	e.draft.Text = s
}

// SetDifficulty sets the draft difficulty, clamped to 1..3.
func (e *Editor) SetDifficulty(n int) {
	if e.state == Viewing {
		return
	}
	e.draft.Difficulty = clampLevel(n)
}

// ToggleClosed switches the draft between closed and open. Switching to
// closed re-applies the choice padding; switching to open leaves choices and
// the correct set in place, where Save will ignore them.
func (e *Editor) ToggleClosed(closed bool) {
	if e.state == Viewing {
		return
	}
	e.draft.IsClosed = closed
	if closed {
		e.draft.Choices = PadChoices(e.draft.Choices)
		if e.draft.Correct == nil {
			e.draft.Correct = []string{}
		}
	}
}

// UpdateChoiceAt replaces the choice at index i; out-of-range writes are
// dropped.
func (e *Editor) UpdateChoiceAt(i int, v string) {
	if e.state == Viewing || i < 0 || i >= len(e.draft.Choices) {
		return
	}
	e.draft.Choices[i] = v
}

// AddChoiceSlot appends one empty choice slot.
func (e *Editor) AddChoiceSlot() {
	if e.state == Viewing {
		return
	}
	e.draft.Choices = append(PadChoices(e.draft.Choices), "")
}

// SetChoices replaces the whole choice list, dropping any seeded choices the
// caller left out. Closed drafts keep the minimum slot padding.
func (e *Editor) SetChoices(choices []string) {
	if e.state == Viewing {
		return
	}
	e.draft.Choices = append([]string(nil), choices...)
	if e.draft.IsClosed {
		e.draft.Choices = PadChoices(e.draft.Choices)
	}
}

// SetCorrect replaces the correct-answer set. Empty values are dropped and
// duplicates collapse, same as ToggleCorrect.
func (e *Editor) SetCorrect(values []string) {
	if e.state == Viewing {
		return
	}
	kept := lo.Filter(values, func(c string, _ int) bool { return c != "" })
	e.draft.Correct = lo.Uniq(kept)
}

// ToggleCorrect adds or removes v from the correct-answer set. Empty values
// are never added.
func (e *Editor) ToggleCorrect(v string, checked bool) {
	if e.state == Viewing {
		return
	}
	if checked {
		if v != "" && !lo.Contains(e.draft.Correct, v) {
			e.draft.Correct = append(e.draft.Correct, v)
		}
		return
	}
	e.draft.Correct = lo.Filter(e.draft.Correct, func(c string, _ int) bool { return c != v })
}

// SaveOutcome is the cleaned payload Save produced. TargetID is empty for a
// create.
type SaveOutcome struct {
	TargetID string
	Payload  quiz.QuestionPayload
}

// Save validates and cleans the draft into a submission payload. The editor
// stays in its editing state: the caller submits the payload to the backend
// and calls Finish on success, so a failed submission leaves the draft
// intact for a retry.
//
// The add path requires cleaned choices and a non-empty correct set; the
// edit path applies the same cleaning but lets an empty correct set through.
// That asymmetry matches the product's observed behavior and is kept until
// it is clarified.
func (e *Editor) Save() (SaveOutcome, error) {
	if e.state == Viewing {
		return SaveOutcome{}, ErrNoDraft
	}

	text := strings.TrimSpace(e.draft.Text)
	if text == "" {
		return SaveOutcome{}, quiz.Invalid(quiz.EmptyQuestionText, "provide the question text")
	}

	p := quiz.QuestionPayload{
		Text:       text,
		IsClosed:   e.draft.IsClosed,
		Difficulty: clampLevel(e.draft.Difficulty),
	}
	if p.IsClosed {
		choices, correct := CleanChoices(e.draft.Choices, e.draft.Correct)
		if e.state == AddingNew {
			if len(choices) == 0 {
				return SaveOutcome{}, quiz.Invalid(quiz.NoChoicesProvided, "add at least one choice")
			}
			if len(correct) == 0 {
				return SaveOutcome{}, quiz.Invalid(quiz.NoCorrectAnswerSelected, "mark at least one correct choice")
			}
		}
		p.Choices, p.CorrectChoices = choices, correct
	}
	return SaveOutcome{TargetID: e.draft.TargetID, Payload: p}, nil
}

// Finish closes the draft after its payload has been accepted by the
// backend.
func (e *Editor) Finish() {
	e.state = Viewing
	e.draft = Draft{}
}

func clampLevel(n int) int {
	if n < 1 {
		return 1
	}
	if n > 3 {
		return 3
	}
	return n
}
