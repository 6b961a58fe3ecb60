package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tmsintake/internal/metrics"
	"tmsintake/internal/model"
	"tmsintake/internal/registry"
)

func contactValues() model.Values {
	return model.Values{
		"name":             model.Text("Jane Doe"),
		"email":            model.Text(" jane@example.com "),
		"preferredDate":    model.MustDate(2024, time.June, 17),
		"consultationType": model.Text("TMS Treatment"),
		"message":          model.Text("Please call me <b>after</b> 5pm."),
	}
}

func newTestClient(t *testing.T, endpoint string) (*Client, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	c, err := NewClient(Config{
		Endpoint:    endpoint,
		APIKey:      "re_test",
		FromName:    "TMS of Emerald Coast",
		FromAddress: "onboarding@resend.dev",
		To:          "intake@example.com",
		Timeout:     2 * time.Second,
		ClinicName:  "TMS of Emerald Coast",
		Source:      "TMS of Emerald Coast App",
		Location:    time.UTC,
	}, registry.Default(), m, zap.NewNop())
	require.NoError(t, err)
	c.SetClock(func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) })
	return c, m
}

func TestSubmit_HappyPath(t *testing.T) {
	var calls int32
	var got emailRequest
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	c, m := newTestClient(t, srv.URL)
	values := contactValues()
	before := values.Clone()

	ctx := WithIdempotencyKey(context.Background(), "abc-123")
	err := c.Submit(ctx, model.FormContact, values)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, before, values)

	assert.Equal(t, "Bearer re_test", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "abc-123", headers.Get("Idempotency-Key"))

	assert.Equal(t, `"TMS of Emerald Coast" <onboarding@resend.dev>`, got.From)
	assert.Equal(t, []string{"intake@example.com"}, got.To)
	assert.Equal(t, "New Message Submission from Jane Doe", got.Subject)
	assert.Equal(t, "jane@example.com", got.ReplyTo)
	assert.Contains(t, got.HTML, "Monday, June 17, 2024")
	assert.Contains(t, got.HTML, "TMS Treatment")
	assert.Contains(t, got.HTML, "mailto:jane@example.com")
	assert.Contains(t, got.HTML, "&lt;b&gt;after&lt;/b&gt;")
	assert.NotContains(t, got.HTML, "<b>after</b>")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SubmissionsSent.WithLabelValues("contact")))
}

func TestSubmit_ServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"statusCode":500,"name":"internal_server_error","message":"Something went wrong"}`))
	}))
	defer srv.Close()

	c, m := newTestClient(t, srv.URL)
	values := contactValues()
	before := values.Clone()

	err := c.Submit(context.Background(), model.FormContact, values)
	require.Error(t, err)

	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindStatus, subErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, subErr.StatusCode)
	assert.Equal(t, "Something went wrong", subErr.Displayable())
	assert.Equal(t, before, values)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SubmissionsFailed.WithLabelValues("contact", "status")))
}

func TestSubmit_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	err := c.Submit(context.Background(), model.FormContact, contactValues())

	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindStatus, subErr.Kind)
	assert.Equal(t, DefaultMessage, subErr.Displayable())
}

func TestSubmit_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	err := c.Submit(context.Background(), model.FormContact, contactValues())

	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindDecode, subErr.Kind)
}

func TestSubmit_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := newTestClient(t, srv.URL)
	c.cfg.Timeout = 50 * time.Millisecond

	err := c.Submit(context.Background(), model.FormContact, contactValues())
	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindTimeout, subErr.Kind)
	assert.Contains(t, subErr.Displayable(), "timed out")
}

func TestSubmit_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.Submit(ctx, model.FormContact, contactValues())
	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindCancelled, subErr.Kind)
}

func TestSubmit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := newTestClient(t, url)
	err := c.Submit(context.Background(), model.FormContact, contactValues())

	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindNetwork, subErr.Kind)
	assert.Equal(t, DefaultMessage, subErr.Displayable())
}

func TestSubmit_MissingCredential(t *testing.T) {
	c, _ := newTestClient(t, "http://127.0.0.1:1")
	c.cfg.APIKey = ""

	err := c.Submit(context.Background(), model.FormContact, contactValues())
	var subErr *Error
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, KindConfig, subErr.Kind)
}

func TestSubmit_AssessmentIncludesScore(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"x"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	values := model.Values{}
	for i := 1; i <= 9; i++ {
		values[keyFor(i)] = model.Text("1")
	}
	require.NoError(t, c.Submit(context.Background(), model.FormPHQ9, values))

	assert.Equal(t, "New Patient Health Questionnaire (PHQ-9) Submission", got.Subject)
	assert.Empty(t, got.ReplyTo)
	assert.Contains(t, got.HTML, "PHQ-9 total: 9 / 27")
	assert.Contains(t, got.HTML, "(mild)")
	assert.True(t, strings.Contains(got.HTML, "1. Several days"))
}

func TestIdempotencyKey(t *testing.T) {
	a := IdempotencyKey("01J0SESSION", 0, contactValues())
	b := IdempotencyKey("01J0SESSION", 0, contactValues())
	assert.Equal(t, a, b)

	changed := contactValues()
	changed["message"] = model.Text("Something else entirely")
	assert.NotEqual(t, a, IdempotencyKey("01J0SESSION", 0, changed))
	assert.NotEqual(t, a, IdempotencyKey("01J0OTHER", 0, contactValues()))

	// the same values sent again after a reset are a new notification
	assert.NotEqual(t, a, IdempotencyKey("01J0SESSION", 1, contactValues()))
}

func keyFor(i int) string {
	return "q" + string(rune('0'+i))
}
