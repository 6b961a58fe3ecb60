package form

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"
	"tmsintake/internal/validation"
)

var (
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// transitions is the allowed status graph; Reset bypasses it
var transitions = map[model.Status][]model.Status{
	model.StatusIdle:       {model.StatusValidating},
	model.StatusValidating: {model.StatusSubmitting, model.StatusIdle},
	model.StatusSubmitting: {model.StatusSucceeded, model.StatusFailed},
	model.StatusFailed:     {model.StatusValidating},
	model.StatusSucceeded:  {model.StatusValidating},
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// State is the mutable state of one form instance. It is not safe for
// concurrent use; callers serialise access per instance.
type State struct {
	form      *registry.Form
	now       func() time.Time
	values    model.Values
	errors    validation.ErrorMap
	touched   map[string]bool
	status    model.Status
	attempted bool
	lastError string
	cycle     int
}

// New creates a state holding the registry defaults of f. now must return
// the current time in the clinic's time zone.
func New(f *registry.Form, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{
		form:    f,
		now:     now,
		values:  f.Defaults(),
		errors:  validation.ErrorMap{},
		touched: map[string]bool{},
		status:  model.StatusIdle,
	}
}

// Form returns the declaration the state was built from
func (s *State) Form() *registry.Form {
	return s.form
}

// SetField stores v under key. A nil or blank value clears the field. When
// the field currently shows an error and is typed in by the user, it is
// re-validated so the error disappears as soon as the input is fixed.
func (s *State) SetField(key string, v model.Value) error {
	spec, ok := s.form.Field(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}

	if v == nil {
		delete(s.values, key)
	} else {
		s.values[key] = v
	}

	if _, hasErr := s.errors[key]; !hasErr {
		return nil
	}
	if !spec.Required && model.IsUnset(v) {
		delete(s.errors, key)
		return nil
	}
	if spec.Kind.Textual() && validation.ValidateField(v, spec, s.now()) == "" {
		delete(s.errors, key)
	}
	return nil
}

// MarkTouched records that the user left the field and validates it
func (s *State) MarkTouched(key string) error {
	spec, ok := s.form.Field(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	s.touched[key] = true
	if msg := validation.ValidateField(s.values[key], spec, s.now()); msg != "" {
		s.errors[key] = msg
	} else {
		delete(s.errors, key)
	}
	return nil
}

// SetStatus moves to next along the allowed transitions
func (s *State) SetStatus(next model.Status) error {
	if !CanTransition(s.status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, next)
	}
	s.status = next
	return nil
}

// Reset restores the registry defaults and returns to idle. It is refused
// while a submission is in flight.
func (s *State) Reset() error {
	if s.status == model.StatusSubmitting {
		return ErrSubmissionInFlight
	}
	s.values = s.form.Defaults()
	s.errors = validation.ErrorMap{}
	s.touched = map[string]bool{}
	s.status = model.StatusIdle
	s.attempted = false
	s.lastError = ""
	s.cycle++
	return nil
}

// Validate runs the engine over every field and stores the result. For
// questionnaires the summary lists the unanswered question numbers.
func (s *State) Validate() validation.Report {
	s.attempted = true
	s.errors = validation.Validate(s.values, s.form.Fields, s.now())

	report := validation.Summarize(s.errors, s.form.Fields)
	if a := s.form.Assessment; a != nil {
		missing, summary := validation.MissingResponses(s.form.Responses(s.values), len(a.Questions))
		if len(missing) > 0 {
			report.Missing = missing
			report.Summary = summary
		}
	}
	return report
}

// BeginSubmit validates and, when the form is clean, moves to submitting.
// ok is false when validation failed; the state is then back to idle.
func (s *State) BeginSubmit() (report validation.Report, ok bool, err error) {
	if s.status == model.StatusSubmitting {
		return validation.Report{}, false, ErrSubmissionInFlight
	}
	if err := s.SetStatus(model.StatusValidating); err != nil {
		return validation.Report{}, false, err
	}

	report = s.Validate()
	if !report.Errors.Valid() {
		return report, false, s.SetStatus(model.StatusIdle)
	}
	return report, true, s.SetStatus(model.StatusSubmitting)
}

// FinishSubmit records the outcome of the submission. Values are kept either way.
func (s *State) FinishSubmit(submitErr error, message string) error {
	if submitErr == nil {
		s.lastError = ""
		return s.SetStatus(model.StatusSucceeded)
	}
	s.lastError = message
	return s.SetStatus(model.StatusFailed)
}

// Values returns a copy of the current values
func (s *State) Values() model.Values {
	return s.values.Clone()
}

// Errors returns a copy of every current error
func (s *State) Errors() validation.ErrorMap {
	return s.errors.Clone()
}

// VisibleErrors returns the errors the user should see: only touched fields
// until the first submit attempt, all of them afterwards.
func (s *State) VisibleErrors() validation.ErrorMap {
	if s.attempted {
		return s.errors.Clone()
	}
	out := validation.ErrorMap{}
	for k, msg := range s.errors {
		if s.touched[k] {
			out[k] = msg
		}
	}
	return out
}

// Touched returns the touched keys in sorted order
func (s *State) Touched() []string {
	out := make([]string, 0, len(s.touched))
	for k := range s.touched {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *State) Status() model.Status {
	return s.status
}

// Cycle counts resets; a fresh fill of the same instance gets a new cycle
func (s *State) Cycle() int {
	return s.cycle
}

// LastError is the displayable message of the last failed submission
func (s *State) LastError() string {
	return s.lastError
}
