package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/composer/internal/workspace"
)

const maxUploadBytes = 20 << 20

// UploadMaterialHandler streams a source document to the generation service
// and stages the returned reference when extraction succeeded.
func UploadMaterialHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("uploaded_file")
		if err != nil {
			http.Error(w, "missing uploaded_file", http.StatusBadRequest)
			return
		}
		defer f.Close()

		m, err := ws.UploadMaterial(r.Context(), hdr.Filename, f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// ExportPDFHandler passes the backend-rendered PDF through as a download.
func ExportPDFHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		showAnswers, _ := strconv.ParseBool(r.URL.Query().Get("show_answers"))
		b, err := ws.ExportPDF(r.Context(), testID, showAnswers)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%s.pdf"`, testID))
		_, _ = w.Write(b)
	}
}

// ExportXMLHandler passes the backend-rendered XML through as a download.
func ExportXMLHandler(ws *workspace.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		b, err := ws.ExportXML(r.Context(), testID)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%s.xml"`, testID))
		_, _ = w.Write(b)
	}
}
