package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/composer/internal/workspace"
)

// AddQuestionHandler runs the add path of the draft editor and returns the
// refetched test snapshot.
func AddQuestionHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in workspace.DraftInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		detail, err := ws.AddQuestion(r.Context(), chi.URLParam(r, "testID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

// UpdateQuestionHandler runs the edit path and returns the merged question.
func UpdateQuestionHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in workspace.DraftInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q, err := ws.UpdateQuestion(r.Context(), chi.URLParam(r, "testID"), chi.URLParam(r, "questionID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DeleteQuestionHandler removes one question and returns the refetched
// snapshot.
func DeleteQuestionHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := ws.DeleteQuestion(r.Context(), chi.URLParam(r, "testID"), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}
