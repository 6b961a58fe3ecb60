package model

// FormType identifies a registered intake form
type FormType string

const (
	FormContact          FormType = "contact"
	FormBDI              FormType = "bdi-ii"
	FormPHQ9             FormType = "phq-9"
	FormMedicalHistory   FormType = "medical-history"
	FormDemographicSheet FormType = "patient-demographic-sheet"
	FormPreCertMedList   FormType = "pre-cert-med-list"
)

// FieldKind represents the input type of a field
type FieldKind string

const (
	KindText          FieldKind = "text"
	KindEmail         FieldKind = "email"
	KindPhone         FieldKind = "phone"
	KindDate          FieldKind = "date"
	KindDropdown      FieldKind = "dropdown-single"
	KindMultiCheckbox FieldKind = "multi-checkbox"
	KindNumeric       FieldKind = "numeric"
	KindTextArea      FieldKind = "free-text-area"
)

// Textual reports whether values of this kind are typed in by the user
func (k FieldKind) Textual() bool {
	switch k {
	case KindText, KindEmail, KindPhone, KindNumeric, KindTextArea:
		return true
	}
	return false
}

// Status represents the submission status of a form
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Placeholder is the sentinel a dropdown reports before anything is chosen
const Placeholder = "Select"

// Option is one choice of a dropdown or checkbox group
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Constraints holds the kind-specific checks of a field
type Constraints struct {
	MinLength      int      `json:"minLength,omitempty"`
	MaxLength      int      `json:"maxLength,omitempty"`
	Pattern        string   `json:"pattern,omitempty"`
	PatternMessage string   `json:"patternMessage,omitempty"`
	Min            *int     `json:"min,omitempty"`
	Max            *int     `json:"max,omitempty"`
	Options        []Option `json:"options,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty"`
	MinDate        *Date    `json:"minDate,omitempty"`
	MaxDate        *Date    `json:"maxDate,omitempty"`
	FutureOnly     bool     `json:"futureOnly,omitempty"`
	PastOrToday    bool     `json:"pastOrToday,omitempty"`
}

// HasOption reports whether value is one of the declared options
func (c Constraints) HasOption(value string) bool {
	for _, o := range c.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// FieldSpec describes one form input
type FieldSpec struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Prompt      string      `json:"prompt,omitempty"`
	Kind        FieldKind   `json:"kind"`
	Required    bool        `json:"required"`
	Constraints Constraints `json:"constraints"`
	Default     Value       `json:"-"`
}

// Responses maps a zero-based question index to the selected option value
type Responses map[int]string

// IntPtr is a helper for optional numeric constraints
func IntPtr(i int) *int {
	return &i
}
