package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tmsintake/internal/metrics"
	"tmsintake/internal/registry"
	"tmsintake/internal/schema"
	"tmsintake/internal/service"
	"tmsintake/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const clinicPhone = "850-254-9575"

// emailAPI is a stand-in for the transactional email API
type emailAPI struct {
	calls  int32
	status int32
}

func (e *emailAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&e.calls, 1)
	w.Header().Set("Content-Type", "application/json")
	if code := int(atomic.LoadInt32(&e.status)); code != http.StatusOK {
		w.WriteHeader(code)
		w.Write([]byte(`{"name":"internal_server_error","message":"upstream unavailable"}`))
		return
	}
	w.Write([]byte(`{"id":"email_123"}`))
}

func setupTestServer(t *testing.T) (*httptest.Server, *emailAPI) {
	t.Helper()
	log := zap.NewNop()
	reg := registry.Default()
	m := metrics.New(nil)

	api := &emailAPI{status: http.StatusOK}
	emailSrv := httptest.NewServer(api)
	t.Cleanup(emailSrv.Close)

	client, err := submission.NewClient(submission.Config{
		Endpoint:    emailSrv.URL,
		APIKey:      "re_test",
		FromName:    "TMS Intake",
		FromAddress: "intake@example.com",
		To:          "front-desk@example.com",
		Timeout:     2 * time.Second,
		ClinicName:  "TMS of Emerald Coast",
		Location:    time.UTC,
	}, reg, m, log)
	require.NoError(t, err)

	sessions := service.NewSessionService(reg, service.NewMemoryStore(64, time.Hour), client,
		schema.NewCompilerWithCache(8), m, log, time.UTC)
	sessions.SetClock(func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) })

	r := chi.NewRouter()
	r.Mount("/v1", Routes(Dependencies{Sessions: sessions, Log: log, ClinicPhone: clinicPhone}))

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, api
}

func do(t *testing.T, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func openContact(t *testing.T, base string) string {
	t.Helper()
	code, body := do(t, http.MethodPost, base+"/v1/sessions", map[string]interface{}{"formType": "contact"})
	require.Equal(t, http.StatusCreated, code)
	return body["id"].(string)
}

func fillContact(t *testing.T, base, id string) {
	t.Helper()
	code, _ := do(t, http.MethodPatch, base+"/v1/sessions/"+id+"/fields", map[string]interface{}{
		"name":          "Jane Doe",
		"email":         "jane@example.com",
		"preferredDate": "2024-06-20",
		"message":       "I would like to book a consultation.",
	})
	require.Equal(t, http.StatusOK, code)
}

func TestListForms(t *testing.T) {
	server, _ := setupTestServer(t)

	code, body := do(t, http.MethodGet, server.URL+"/v1/forms", nil)
	require.Equal(t, http.StatusOK, code)
	forms := body["forms"].([]interface{})
	assert.Len(t, forms, 6)
	assert.Equal(t, "contact", forms[0].(map[string]interface{})["type"])
}

func TestGetForm(t *testing.T) {
	server, _ := setupTestServer(t)

	code, body := do(t, http.MethodGet, server.URL+"/v1/forms/phq-9", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["fields"], 9)
	assert.NotNil(t, body["assessment"])

	code, body = do(t, http.MethodGet, server.URL+"/v1/forms/contact", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"consultationType": "Consultation"}, body["defaults"])

	code, body = do(t, http.MethodGet, server.URL+"/v1/forms/tax-return", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown_form", body["code"])
}

func TestScorePreview(t *testing.T) {
	server, _ := setupTestServer(t)

	code, body := do(t, http.MethodPost, server.URL+"/v1/forms/phq-9/score", map[string]interface{}{
		"answers": map[string]interface{}{"q1": "3", "q2": "2"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, body["score"])
	assert.EqualValues(t, 2, body["answered"])

	code, body = do(t, http.MethodPost, server.URL+"/v1/forms/contact/score", map[string]interface{}{"answers": map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "not_assessment", body["code"])
}

func TestSessionLifecycle(t *testing.T) {
	server, api := setupTestServer(t)
	id := openContact(t, server.URL)

	code, body := do(t, http.MethodPut, server.URL+"/v1/sessions/"+id+"/fields/email", map[string]interface{}{"value": "jane@"})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["errors"])

	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/touch/email", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Please enter a valid email address", body["errors"].(map[string]interface{})["email"])

	code, body = do(t, http.MethodPut, server.URL+"/v1/sessions/"+id+"/fields/nope", map[string]interface{}{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "unknown_field", body["code"])

	fillContact(t, server.URL, id)

	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/validate", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])

	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["submitted"])
	assert.Equal(t, "succeeded", body["session"].(map[string]interface{})["status"])
	assert.EqualValues(t, 1, atomic.LoadInt32(&api.calls))

	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "idle", body["status"])

	code, _ = do(t, http.MethodDelete, server.URL+"/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = do(t, http.MethodGet, server.URL+"/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "session_not_found", body["code"])
}

func TestSubmitBlockedByValidation(t *testing.T) {
	server, api := setupTestServer(t)
	id := openContact(t, server.URL)

	code, body := do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "validation_failed", body["code"])
	assert.Contains(t, body["message"], "Name is required")
	assert.Equal(t, "name", body["report"].(map[string]interface{})["firstInvalid"])
	assert.EqualValues(t, 0, atomic.LoadInt32(&api.calls))
}

func TestSubmitFailureOffersFallback(t *testing.T) {
	server, api := setupTestServer(t)
	atomic.StoreInt32(&api.status, http.StatusInternalServerError)
	id := openContact(t, server.URL)
	fillContact(t, server.URL, id)

	code, body := do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "submission_failed", body["code"])
	assert.Equal(t, "status", body["kind"])
	assert.Equal(t, map[string]interface{}{"retry": true, "phone": clinicPhone}, body["fallback"])

	session := body["session"].(map[string]interface{})
	assert.Equal(t, "failed", session["status"])
	assert.Equal(t, "Jane Doe", session["values"].(map[string]interface{})["name"])

	// Try Again
	atomic.StoreInt32(&api.status, http.StatusOK)
	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["submitted"])
	assert.EqualValues(t, 2, atomic.LoadInt32(&api.calls))
}

func TestSetFieldsRejectsBadShape(t *testing.T) {
	server, _ := setupTestServer(t)
	id := openContact(t, server.URL)

	code, body := do(t, http.MethodPatch, server.URL+"/v1/sessions/"+id+"/fields", map[string]interface{}{"name": []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_payload", body["code"])
}

func TestOpenSessionValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	code, body := do(t, http.MethodPost, server.URL+"/v1/sessions", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["code"])

	code, body = do(t, http.MethodPost, server.URL+"/v1/sessions", map[string]interface{}{"formType": "tax-return"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown_form", body["code"])
}
