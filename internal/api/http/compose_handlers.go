package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/composer/internal/compose"
	"github.com/quizforge/composer/internal/workspace"
)

// composeInput is the raw form as entered by the user. It is replayed into
// a compose.Form so the form's own rules decide what counts.
type composeInput struct {
	ClosedCounts map[compose.ClosedKind]int `json:"closed_counts"`
	OpenCount    int                        `json:"num_open"`
	Difficulty   compose.Difficulty         `json:"difficulty"`
	Source       compose.Source             `json:"source"`
}

func (in composeInput) form() *compose.Form {
	f := compose.NewForm()
	for _, k := range compose.ClosedKinds {
		if n, ok := in.ClosedCounts[k]; ok {
			f.SetClosedCount(k, n)
		}
	}
	f.SetOpenCount(in.OpenCount)
	f.SetDifficulty(compose.Easy, in.Difficulty.Easy)
	f.SetDifficulty(compose.Medium, in.Difficulty.Medium)
	f.SetDifficulty(compose.Hard, in.Difficulty.Hard)
	f.SetSource(in.Source)
	return f
}

// GenerateHandler validates the submitted form and forwards the request to
// the generation service.
func GenerateHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in composeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := ws.Generate(r.Context(), in.form())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// ValidateHandler dry-runs the composition checks and returns the live
// percentage feedback alongside the verdict. Nothing reaches the network.
func ValidateHandler() http.HandlerFunc {
	type verdict struct {
		Valid       bool                `json:"valid"`
		Detail      string              `json:"detail,omitempty"`
		Reason      string              `json:"reason,omitempty"`
		Percentages compose.Percentages `json:"percentages"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in composeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		f := in.form()
		out := verdict{Percentages: f.Percentages()}
		if _, err := f.Validate(); err != nil {
			ve := asValidation(err)
			out.Detail = ve.Message
			out.Reason = string(ve.Reason)
		} else {
			out.Valid = true
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ListTestsHandler returns the caller's tests.
func ListTestsHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := ws.Tests(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tests)
	}
}

// GetTestHandler loads one test and makes it the editing target.
func GetTestHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := ws.OpenTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// DeleteTestHandler removes a test.
func DeleteTestHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ws.DeleteTest(r.Context(), chi.URLParam(r, "testID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// BusyHandler reports the debounced busy-indicator flag.
func BusyHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"busy": ws.Busy()})
	}
}
