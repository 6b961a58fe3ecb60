package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"tmsintake/internal/form"
	"tmsintake/internal/metrics"
	"tmsintake/internal/model"
	"tmsintake/internal/registry"
	"tmsintake/internal/schema"
	"tmsintake/internal/scoring"
	"tmsintake/internal/submission"
	"tmsintake/internal/validation"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNotAssessment  = errors.New("form is not a scored questionnaire")
)

// Submitter delivers a validated form
type Submitter interface {
	Submit(ctx context.Context, formType model.FormType, values model.Values) error
}

// View is the client-facing rendition of a session
type View struct {
	ID        string                 `json:"id"`
	FormType  model.FormType         `json:"formType"`
	Status    model.Status           `json:"status"`
	Values    map[string]interface{} `json:"values"`
	Errors    validation.ErrorMap    `json:"errors"`
	Touched   []string               `json:"touched"`
	LastError string                 `json:"lastError,omitempty"`
	Score     *scoring.Preview       `json:"score,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// SubmitResult is the outcome of a submit action. Submitted is false when
// validation blocked the attempt; Failure is set when delivery failed.
type SubmitResult struct {
	View      *View             `json:"session"`
	Report    validation.Report `json:"report"`
	Submitted bool              `json:"submitted"`
	Failure   *submission.Error `json:"-"`
}

// SessionService drives form sessions: one form state per open form instance
type SessionService struct {
	registry   *registry.Registry
	store      Store
	submitter  Submitter
	schemaComp *schema.Compiler
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

// NewSessionService creates the service. loc is the clinic's time zone, which
// decides what "today" means for date rules.
func NewSessionService(reg *registry.Registry, store Store, submitter Submitter, schemaComp *schema.Compiler, m *metrics.Metrics, log *zap.Logger, loc *time.Location) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	return &SessionService{
		registry:   reg,
		store:      store,
		submitter:  submitter,
		schemaComp: schemaComp,
		metrics:    m,
		log:        log,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// SetClock replaces the clock; now must return clinic-local time
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Registry returns the form registry
func (s *SessionService) Registry() *registry.Registry {
	return s.registry
}

// Open starts a session for formType with the registry defaults
func (s *SessionService) Open(ctx context.Context, formType model.FormType) (*View, error) {
	f, err := s.registry.Lookup(formType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &Record{
		ID:        ulid.Make().String(),
		FormType:  formType,
		CreatedAt: now,
		UpdatedAt: now,
		State:     form.New(f, s.now).Snapshot(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.SessionOpened(string(formType))
	s.log.Info("Session opened", zap.String("session_id", rec.ID), zap.String("form_type", string(formType)))
	return s.view(rec)
}

// Get returns the current session view
func (s *SessionService) Get(ctx context.Context, id string) (*View, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(rec)
}

// SetField decodes raw for the field's kind and stores it
func (s *SessionService) SetField(ctx context.Context, id, key string, raw interface{}) (*View, error) {
	return s.mutate(ctx, id, func(st *form.State) error {
		return setRaw(st, key, raw)
	})
}

// SetFields applies a bulk update after checking its shape against the form's schema
func (s *SessionService) SetFields(ctx context.Context, id string, body map[string]interface{}) (*View, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := s.registry.Lookup(rec.FormType)
	if err != nil {
		return nil, err
	}
	if err := s.schemaComp.Validate(ctx, f, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return s.mutate(ctx, id, func(st *form.State) error {
		// registry order keeps the outcome independent of map iteration
		for _, spec := range f.Fields {
			raw, ok := body[spec.Key]
			if !ok {
				continue
			}
			if err := setRaw(st, spec.Key, raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// Touch marks key as visited and validates it
func (s *SessionService) Touch(ctx context.Context, id, key string) (*View, error) {
	return s.mutate(ctx, id, func(st *form.State) error {
		return st.MarkTouched(key)
	})
}

// Validate runs the full validation without submitting
func (s *SessionService) Validate(ctx context.Context, id string) (*View, validation.Report, error) {
	var report validation.Report
	v, err := s.mutate(ctx, id, func(st *form.State) error {
		report = st.Validate()
		return nil
	})
	return v, report, err
}

// Reset restores the defaults of the session's form. It fails with
// form.ErrSubmissionInFlight while a delivery is running.
func (s *SessionService) Reset(ctx context.Context, id string) (*View, error) {
	return s.mutate(ctx, id, func(st *form.State) error {
		return st.Reset()
	})
}

// Close discards the session. A session with a delivery in flight is kept
// so the outcome can still be recorded.
func (s *SessionService) Close(ctx context.Context, id string) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.State.Status == model.StatusSubmitting {
		return form.ErrSubmissionInFlight
	}
	return s.store.Delete(ctx, id)
}

// Submit validates the session and, when clean, delivers it once. A second
// call while a delivery is in flight returns form.ErrSubmissionInFlight
// without contacting the email API.
func (s *SessionService) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	var (
		report   validation.Report
		ok       bool
		formType model.FormType
		values   model.Values
		cycle    int
	)

	v, err := s.mutate(ctx, id, func(st *form.State) error {
		var err error
		report, ok, err = st.BeginSubmit()
		if err != nil {
			return err
		}
		formType = st.Form().Type
		values = st.Values()
		cycle = st.Cycle()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !ok {
		s.metrics.ValidationFailed(string(formType))
		return &SubmitResult{View: v, Report: report}, nil
	}

	submitCtx := submission.WithIdempotencyKey(ctx, submission.IdempotencyKey(id, cycle, values))
	submitErr := s.submitter.Submit(submitCtx, formType, values)

	var failure *submission.Error
	message := ""
	if submitErr != nil {
		if !errors.As(submitErr, &failure) {
			failure = &submission.Error{Kind: submission.KindNetwork, Err: submitErr}
		}
		message = failure.Displayable()
		s.log.Warn("Submission failed",
			zap.String("session_id", id),
			zap.String("form_type", string(formType)),
			zap.Error(submitErr))
	}

	// The outcome must be recorded even if the caller went away mid-request
	v, err = s.mutate(context.WithoutCancel(ctx), id, func(st *form.State) error {
		return st.FinishSubmit(submitErr, message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission outcome: %w", err)
	}

	return &SubmitResult{View: v, Report: report, Submitted: submitErr == nil, Failure: failure}, nil
}

// ScorePreview computes the advisory running total of a questionnaire
// without a session.
func (s *SessionService) ScorePreview(formType model.FormType, answers map[string]interface{}) (scoring.Preview, error) {
	f, err := s.registry.Lookup(formType)
	if err != nil {
		return scoring.Preview{}, err
	}
	if f.Assessment == nil {
		return scoring.Preview{}, fmt.Errorf("%w: %s", ErrNotAssessment, formType)
	}

	values := model.Values{}
	for _, key := range f.Assessment.Questions {
		raw, ok := answers[key]
		if !ok {
			continue
		}
		v, err := model.DecodeValue(model.KindDropdown, raw)
		if err != nil {
			return scoring.Preview{}, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, key, err)
		}
		if v != nil {
			values[key] = v
		}
	}
	return f.Assessment.Instrument.Preview(f.Responses(values)), nil
}

// mutate loads the session state, applies fn and saves the result atomically
func (s *SessionService) mutate(ctx context.Context, id string, fn func(st *form.State) error) (*View, error) {
	rec, err := s.store.Update(ctx, id, func(rec *Record) error {
		f, err := s.registry.Lookup(rec.FormType)
		if err != nil {
			return err
		}
		st, err := form.Restore(f, rec.State, s.now)
		if err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
		if err := fn(st); err != nil {
			return err
		}
		rec.State = st.Snapshot()
		rec.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(rec)
}

func (s *SessionService) view(rec *Record) (*View, error) {
	f, err := s.registry.Lookup(rec.FormType)
	if err != nil {
		return nil, err
	}
	st, err := form.Restore(f, rec.State, s.now)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	v := &View{
		ID:        rec.ID,
		FormType:  rec.FormType,
		Status:    st.Status(),
		Values:    model.EncodeValues(st.Values()),
		Errors:    st.VisibleErrors(),
		Touched:   st.Touched(),
		LastError: st.LastError(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if f.Assessment != nil {
		preview := f.Assessment.Instrument.Preview(f.Responses(st.Values()))
		v.Score = &preview
	}
	return v, nil
}

func setRaw(st *form.State, key string, raw interface{}) error {
	spec, ok := st.Form().Field(key)
	if !ok {
		return fmt.Errorf("%w: %s", form.ErrUnknownField, key)
	}
	v, err := model.DecodeValue(spec.Kind, raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, key, err)
	}
	return st.SetField(key, v)
}
