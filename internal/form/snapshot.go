package form

import (
	"fmt"
	"time"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"
	"tmsintake/internal/validation"
)

// Snapshot is the serialisable form of a State
type Snapshot struct {
	FormType  model.FormType         `json:"formType"`
	Values    map[string]interface{} `json:"values"`
	Errors    validation.ErrorMap    `json:"errors"`
	Touched   []string               `json:"touched"`
	Status    model.Status           `json:"status"`
	Attempted bool                   `json:"attempted"`
	LastError string                 `json:"lastError,omitempty"`
	Cycle     int                    `json:"cycle"`
}

// Snapshot captures the current state
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		FormType:  s.form.Type,
		Values:    model.EncodeValues(s.values),
		Errors:    s.errors.Clone(),
		Touched:   s.Touched(),
		Status:    s.status,
		Attempted: s.attempted,
		LastError: s.lastError,
		Cycle:     s.cycle,
	}
}

// Restore rebuilds a State from snap. Keys no longer declared by f are dropped.
func Restore(f *registry.Form, snap Snapshot, now func() time.Time) (*State, error) {
	if snap.FormType != f.Type {
		return nil, fmt.Errorf("snapshot is for %s, not %s", snap.FormType, f.Type)
	}
	if _, ok := transitions[snap.Status]; !ok {
		return nil, fmt.Errorf("snapshot has unknown status %q", snap.Status)
	}

	s := New(f, now)
	s.values = model.Values{}
	for key, raw := range snap.Values {
		spec, ok := f.Field(key)
		if !ok {
			continue
		}
		v, err := model.DecodeValue(spec.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to restore field %s: %w", key, err)
		}
		if v != nil {
			s.values[key] = v
		}
	}
	for key, msg := range snap.Errors {
		if _, ok := f.Field(key); ok {
			s.errors[key] = msg
		}
	}
	for _, key := range snap.Touched {
		s.touched[key] = true
	}
	s.status = snap.Status
	s.attempted = snap.Attempted
	s.lastError = snap.LastError
	s.cycle = snap.Cycle
	return s, nil
}
