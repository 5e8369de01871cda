package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/quizforge/composer/internal/workspace"
)

// Mount attaches the composer API to r. Callers wrap r in whatever auth
// middleware the mode requires.
func Mount(r chi.Router, ws *workspace.Service) {
	r.Get("/tests", ListTestsHandler(ws))
	r.Post("/tests/generate", GenerateHandler(ws))
	r.Route("/tests/{testID}", func(tr chi.Router) {
		tr.Get("/", GetTestHandler(ws))
		tr.Delete("/", DeleteTestHandler(ws))
		tr.Post("/questions", AddQuestionHandler(ws))
		tr.Patch("/questions/{questionID}", UpdateQuestionHandler(ws))
		tr.Delete("/questions/{questionID}", DeleteQuestionHandler(ws))
		tr.Get("/export/pdf", ExportPDFHandler(ws))
		tr.Get("/export/xml", ExportXMLHandler(ws))
	})
	r.Post("/materials/upload", UploadMaterialHandler(ws))
	r.Post("/composer/validate", ValidateHandler())
	r.Get("/composer/busy", BusyHandler(ws))
}
