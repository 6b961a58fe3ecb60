package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tms_intake"

// Metrics holds the pipeline's prometheus collectors
type Metrics struct {
	SubmissionsSent    *prometheus.CounterVec
	SubmissionsFailed  *prometheus.CounterVec
	SubmitDuration     *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	SessionsOpened     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is not nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_sent_total",
			Help:      "Submissions accepted by the email API.",
		}, []string{"form_type"}),
		SubmissionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_failed_total",
			Help:      "Submissions that did not reach the email API, by failure kind.",
		}, []string{"form_type", "kind"}),
		SubmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Latency of the outbound email API call.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"form_type"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Submit attempts blocked by validation errors.",
		}, []string{"form_type"}),
		SessionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Form sessions opened.",
		}, []string{"form_type"}),
	}

	if reg != nil {
		reg.MustRegister(m.SubmissionsSent, m.SubmissionsFailed, m.SubmitDuration, m.ValidationFailures, m.SessionsOpened)
	}
	return m
}

// ObserveSubmit records the outcome of one outbound call. kind is empty on success.
func (m *Metrics) ObserveSubmit(formType, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SubmitDuration.WithLabelValues(formType).Observe(elapsed.Seconds())
	if kind == "" {
		m.SubmissionsSent.WithLabelValues(formType).Inc()
		return
	}
	m.SubmissionsFailed.WithLabelValues(formType, kind).Inc()
}

// ValidationFailed counts a submit attempt blocked by validation
func (m *Metrics) ValidationFailed(formType string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(formType).Inc()
}

// SessionOpened counts a new form session
func (m *Metrics) SessionOpened(formType string) {
	if m == nil {
		return
	}
	m.SessionsOpened.WithLabelValues(formType).Inc()
}
