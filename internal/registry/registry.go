package registry

import (
	"errors"
	"fmt"
	"strings"

	"tmsintake/internal/model"
	"tmsintake/internal/scoring"
	"tmsintake/internal/validation"
)

// ErrUnknownForm is returned when a form type is not registered
var ErrUnknownForm = errors.New("unknown form type")

// Assessment links a questionnaire form to its scored instrument
type Assessment struct {
	Instrument scoring.Instrument `json:"instrument"`
	Questions  []string           `json:"questions"`
}

// Form is the declaration of one intake form
type Form struct {
	Type        model.FormType    `json:"type"`
	Title       string            `json:"title"`
	Fields      []model.FieldSpec `json:"fields"`
	Assessment  *Assessment       `json:"assessment,omitempty"`
	NameField   string            `json:"-"`
	EmailField  string            `json:"-"`
	Description string            `json:"description,omitempty"`
}

// Field returns the declaration of key
func (f *Form) Field(key string) (model.FieldSpec, bool) {
	for _, spec := range f.Fields {
		if spec.Key == key {
			return spec, true
		}
	}
	return model.FieldSpec{}, false
}

// Defaults returns the initial values of a fresh form instance
func (f *Form) Defaults() model.Values {
	values := model.Values{}
	for _, spec := range f.Fields {
		if spec.Default != nil {
			values[spec.Key] = spec.Default
		}
	}
	return values
}

// Responses extracts the assessment answers, or nil for plain forms.
// Answers that are not one of the question's options are left out, so they
// neither score nor count as answered.
func (f *Form) Responses(values model.Values) model.Responses {
	if f.Assessment == nil {
		return nil
	}
	out := scoring.Responses(values, f.Assessment.Questions)
	for i, answer := range out {
		if i < 0 || i >= len(f.Assessment.Questions) {
			delete(out, i)
			continue
		}
		spec, ok := f.Field(f.Assessment.Questions[i])
		if !ok || !spec.Constraints.HasOption(answer) {
			delete(out, i)
		}
	}
	return out
}

// ConfigurationError lists structural defects found in form declarations
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("form configuration invalid: %s", strings.Join(e.Problems, "; "))
}

// Registry holds the declared forms in display order
type Registry struct {
	forms []*Form
	index map[model.FormType]*Form
}

// New builds a registry from forms. Duplicate types keep the first declaration
// and are reported by Lint.
func New(forms ...*Form) *Registry {
	r := &Registry{index: make(map[model.FormType]*Form, len(forms))}
	for _, f := range forms {
		r.forms = append(r.forms, f)
		if _, ok := r.index[f.Type]; !ok {
			r.index[f.Type] = f
		}
	}
	return r
}

// Default returns the registry of the clinic's intake forms
func Default() *Registry {
	return New(
		contactForm(),
		bdiForm(),
		phq9Form(),
		medicalHistoryForm(),
		demographicSheetForm(),
		preCertMedListForm(),
	)
}

// Lookup returns the form declared for t
func (r *Registry) Lookup(t model.FormType) (*Form, error) {
	f, ok := r.index[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, t)
	}
	return f, nil
}

// Forms returns every declared form in display order
func (r *Registry) Forms() []*Form {
	out := make([]*Form, len(r.forms))
	copy(out, r.forms)
	return out
}

// Lint checks every form and returns a *ConfigurationError when any defect is found
func (r *Registry) Lint() error {
	var problems []string
	seenTypes := map[model.FormType]bool{}

	for _, f := range r.forms {
		if seenTypes[f.Type] {
			problems = append(problems, fmt.Sprintf("%s: declared twice", f.Type))
		}
		seenTypes[f.Type] = true

		keys := map[string]bool{}
		for _, spec := range f.Fields {
			if keys[spec.Key] {
				problems = append(problems, fmt.Sprintf("%s: duplicate field %q", f.Type, spec.Key))
			}
			keys[spec.Key] = true
			for _, p := range validation.CheckSpec(spec) {
				problems = append(problems, fmt.Sprintf("%s.%s: %s", f.Type, spec.Key, p))
			}
		}

		for _, ref := range []string{f.NameField, f.EmailField} {
			if ref != "" && !keys[ref] {
				problems = append(problems, fmt.Sprintf("%s: references missing field %q", f.Type, ref))
			}
		}

		if a := f.Assessment; a != nil {
			if len(a.Questions) != a.Instrument.Questions {
				problems = append(problems, fmt.Sprintf("%s: %d questions declared, instrument has %d",
					f.Type, len(a.Questions), a.Instrument.Questions))
			}
			for _, q := range a.Questions {
				spec, ok := f.Field(q)
				if !ok {
					problems = append(problems, fmt.Sprintf("%s: question %q has no field", f.Type, q))
					continue
				}
				if spec.Kind != model.KindDropdown {
					problems = append(problems, fmt.Sprintf("%s.%s: question must be %s", f.Type, q, model.KindDropdown))
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// assessmentForm declares one required dropdown per item, keyed q1..qN
func assessmentForm(t model.FormType, title string, in scoring.Instrument, items []item) *Form {
	f := &Form{
		Type:       t,
		Title:      title,
		Assessment: &Assessment{Instrument: in},
	}
	for i, it := range items {
		key := fmt.Sprintf("q%d", i+1)
		f.Fields = append(f.Fields, model.FieldSpec{
			Key:         key,
			Label:       fmt.Sprintf("Question %d", i+1),
			Prompt:      it.Title,
			Kind:        model.KindDropdown,
			Required:    true,
			Constraints: model.Constraints{Options: it.Options, Placeholder: model.Placeholder},
		})
		f.Assessment.Questions = append(f.Assessment.Questions, key)
	}
	return f
}

func options(values ...string) []model.Option {
	out := make([]model.Option, len(values))
	for i, v := range values {
		out[i] = model.Option{Label: v, Value: v}
	}
	return out
}
