package api

import (
	"encoding/json"
	"net/http"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"

	"github.com/go-chi/chi/v5"
)

type formSummary struct {
	Type        model.FormType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Scored      bool           `json:"scored"`
	Fields      int            `json:"fields"`
}

type formDetail struct {
	*registry.Form
	Defaults map[string]interface{} `json:"defaults"`
}

type ScoreRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

func (d Dependencies) listForms(w http.ResponseWriter, r *http.Request) {
	forms := d.Sessions.Registry().Forms()
	out := make([]formSummary, 0, len(forms))
	for _, f := range forms {
		out = append(out, formSummary{
			Type:        f.Type,
			Title:       f.Title,
			Description: f.Description,
			Scored:      f.Assessment != nil,
			Fields:      len(f.Fields),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": out})
}

func (d Dependencies) getForm(w http.ResponseWriter, r *http.Request) {
	f, err := d.Sessions.Registry().Lookup(model.FormType(chi.URLParam(r, "type")))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formDetail{Form: f, Defaults: model.EncodeValues(f.Defaults())})
}

func (d Dependencies) scorePreview(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	preview, err := d.Sessions.ScorePreview(model.FormType(chi.URLParam(r, "type")), req.Answers)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
