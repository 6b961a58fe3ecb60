package api

import (
	"encoding/json"
	"net/http"

	"tmsintake/internal/model"
	"tmsintake/internal/service"
	"tmsintake/internal/submission"
	"tmsintake/internal/validation"

	"github.com/go-chi/chi/v5"
)

type OpenSessionRequest struct {
	FormType model.FormType `json:"formType"`
}

type SetFieldRequest struct {
	Value interface{} `json:"value"`
}

// Fallback tells the client how to recover from a failed submission
type Fallback struct {
	Retry bool   `json:"retry"`
	Phone string `json:"phone,omitempty"`
}

type validationFailure struct {
	ErrorResponse
	Report  validation.Report `json:"report"`
	Session *service.View     `json:"session"`
}

type submissionFailure struct {
	ErrorResponse
	Kind     submission.Kind `json:"kind"`
	Fallback Fallback        `json:"fallback"`
	Session  *service.View   `json:"session"`
}

func (d Dependencies) openSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.FormType == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "formType is required", d.Log)
		return
	}

	v, err := d.Sessions.Open(r.Context(), req.FormType)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (d Dependencies) getSession(w http.ResponseWriter, r *http.Request) {
	v, err := d.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (d Dependencies) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := d.Sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		d.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Dependencies) setField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	v, err := d.Sessions.SetField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (d Dependencies) setFields(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	v, err := d.Sessions.SetFields(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (d Dependencies) touchField(w http.ResponseWriter, r *http.Request) {
	v, err := d.Sessions.Touch(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (d Dependencies) validateSession(w http.ResponseWriter, r *http.Request) {
	v, report, err := d.Sessions.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   report.Errors.Valid() && len(report.Missing) == 0,
		"report":  report,
		"session": v,
	})
}

func (d Dependencies) submitSession(w http.ResponseWriter, r *http.Request) {
	res, err := d.Sessions.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}

	switch {
	case res.Submitted:
		writeJSON(w, http.StatusOK, res)
	case res.Failure != nil:
		writeJSON(w, http.StatusBadGateway, submissionFailure{
			ErrorResponse: ErrorResponse{
				Error:   "submission_failed",
				Code:    "submission_failed",
				Message: res.Failure.Displayable(),
			},
			Kind:     res.Failure.Kind,
			Fallback: Fallback{Retry: true, Phone: d.ClinicPhone},
			Session:  res.View,
		})
	default:
		writeJSON(w, http.StatusUnprocessableEntity, validationFailure{
			ErrorResponse: ErrorResponse{
				Error:   "validation_failed",
				Code:    "validation_failed",
				Message: res.Report.Summary,
			},
			Report:  res.Report,
			Session: res.View,
		})
	}
}

func (d Dependencies) resetSession(w http.ResponseWriter, r *http.Request) {
	v, err := d.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		d.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
