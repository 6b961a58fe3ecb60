package submission

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"
	"tmsintake/internal/scoring"
)

//go:embed templates/*.html
var templateFS embed.FS

const notSpecified = "Not specified"

// Payload is the validated form handed to the adapter for one attempt
type Payload struct {
	FormType    model.FormType
	Fields      model.Values
	GeneratedAt time.Time
}

// row is one label/value pair of the notification
type row struct {
	Label string
	Value string
	Email bool
	List  []string
}

type notification struct {
	Heading     string
	Source      string
	ClinicName  string
	Banner      string
	Rows        []row
	Score       *scoring.Preview
	Instrument  string
	MaxScore    int
	SubmittedAt string
	FormSource  string
	Year        int
}

// Renderer turns a payload into the HTML notification sent to the clinic
type Renderer struct {
	tmpl       *template.Template
	clinicName string
	source     string
	loc        *time.Location
}

// NewRenderer parses the embedded notification template
func NewRenderer(clinicName, source string, loc *time.Location) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/notification.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification template: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{tmpl: tmpl, clinicName: clinicName, source: source, loc: loc}, nil
}

// Render produces the HTML body for p
func (r *Renderer) Render(f *registry.Form, p Payload) (string, error) {
	n := notification{
		Heading:     fmt.Sprintf("New %s Submission", f.Title),
		Source:      r.source,
		ClinicName:  r.clinicName,
		Banner:      "New patient inquiry requires attention",
		SubmittedAt: p.GeneratedAt.In(r.loc).Format("Monday, January 2, 2006 at 3:04:05 PM MST"),
		FormSource:  f.Title + " Form",
		Year:        p.GeneratedAt.In(r.loc).Year(),
	}
	if f.Assessment != nil {
		n.Banner = "New questionnaire received"
		preview := f.Assessment.Instrument.Preview(f.Responses(p.Fields))
		n.Score = &preview
		n.Instrument = f.Assessment.Instrument.Name
		n.MaxScore = f.Assessment.Instrument.MaxScore
	}

	for i, spec := range f.Fields {
		label := spec.Label
		if f.Assessment != nil && spec.Prompt != "" {
			label = fmt.Sprintf("%d. %s", i+1, spec.Prompt)
		}
		n.Rows = append(n.Rows, formatRow(label, spec, p.Fields[spec.Key], f.Assessment != nil))
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render notification: %w", err)
	}
	return buf.String(), nil
}

func formatRow(label string, spec model.FieldSpec, v model.Value, coded bool) row {
	out := row{Label: label, Value: notSpecified}
	if model.IsUnset(v) {
		return out
	}

	switch x := v.(type) {
	case model.Date:
		out.Value = x.Time(time.UTC).Format("Monday, January 2, 2006")
	case model.Selection:
		out.Value = ""
		for _, s := range x {
			out.List = append(out.List, optionLabel(spec, s, false))
		}
	case model.Text:
		text := strings.TrimSpace(string(x))
		switch spec.Kind {
		case model.KindDropdown:
			out.Value = optionLabel(spec, text, coded)
		case model.KindEmail:
			out.Value = text
			out.Email = true
		default:
			out.Value = string(x)
		}
	}
	return out
}

// optionLabel shows the declared label. Coded answers keep their code in front.
func optionLabel(spec model.FieldSpec, value string, coded bool) string {
	for _, o := range spec.Constraints.Options {
		if o.Value != value {
			continue
		}
		if o.Label == o.Value {
			return o.Label
		}
		if coded {
			return fmt.Sprintf("%s. %s", o.Value, o.Label)
		}
		return o.Label
	}
	return value
}

// Subject derives the email subject from the form title and the patient name
func Subject(f *registry.Form, values model.Values) string {
	subject := fmt.Sprintf("New %s Submission", f.Title)
	if f.NameField != "" {
		if name := strings.TrimSpace(model.TextOf(values[f.NameField])); name != "" {
			subject += " from " + name
		}
	}
	return subject
}

// ReplyTo returns the patient's email when the form collects one
func ReplyTo(f *registry.Form, values model.Values) string {
	if f.EmailField == "" {
		return ""
	}
	return strings.TrimSpace(model.TextOf(values[f.EmailField]))
}
