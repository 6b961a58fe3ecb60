package api

import (
	"net/http"

	"tmsintake/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Dependencies struct {
	Sessions    *service.SessionService
	Log         *zap.Logger
	ClinicPhone string
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))

	// Form registry endpoints
	r.Get("/forms", d.listForms)
	r.Get("/forms/{type}", d.getForm)
	r.Post("/forms/{type}/score", d.scorePreview)

	// Session endpoints
	r.Post("/sessions", d.openSession)
	r.Get("/sessions/{id}", d.getSession)
	r.Delete("/sessions/{id}", d.closeSession)
	r.Put("/sessions/{id}/fields/{key}", d.setField)
	r.Patch("/sessions/{id}/fields", d.setFields)
	r.Post("/sessions/{id}/touch/{key}", d.touchField)
	r.Post("/sessions/{id}/validate", d.validateSession)
	r.Post("/sessions/{id}/submit", d.submitSession)
	r.Post("/sessions/{id}/reset", d.resetSession)

	return r
}
