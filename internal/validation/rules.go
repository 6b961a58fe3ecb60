package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"tmsintake/internal/model"
)

// RuleType names one constraint check
type RuleType string

const (
	RuleRequired     RuleType = "required"
	RuleEmail        RuleType = "email"
	RulePhone        RuleType = "phone"
	RuleDate         RuleType = "date"
	RuleMinLength    RuleType = "minLength"
	RuleMaxLength    RuleType = "maxLength"
	RuleNumericRange RuleType = "numericRange"
	RuleRegex        RuleType = "regex"
	RuleFutureDate   RuleType = "futureDate"
	RulePastDate     RuleType = "pastDate"
	RuleOneOf        RuleType = "oneOf"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-\(\)\.]`)
	phonePattern     = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	minPhoneDigits   = 10
	misconfiguredFmt = "%s is misconfigured"
)

// Params holds the rule-specific parameters
type Params struct {
	Min         *int
	Max         *int
	MinDate     *model.Date
	MaxDate     *model.Date
	Pattern     string
	Message     string
	Options     []string
	Placeholder string

	re *regexp.Regexp
}

// Rule is one check of one field. Check is pure and never panics.
type Rule struct {
	Type      RuleType
	Params    Params
	FieldName string
}

// RulesFor derives the ordered rule list for spec. The required rule is
// first when the field is required. A structurally invalid spec returns an
// error instead of rules.
func RulesFor(spec model.FieldSpec) ([]Rule, error) {
	if problems := CheckSpec(spec); len(problems) > 0 {
		return nil, fmt.Errorf("field %q: %s", spec.Key, strings.Join(problems, "; "))
	}

	name := displayName(spec)
	c := spec.Constraints
	var rules []Rule
	add := func(t RuleType, p Params) {
		rules = append(rules, Rule{Type: t, Params: p, FieldName: name})
	}

	if spec.Required {
		add(RuleRequired, Params{Placeholder: placeholderOf(spec)})
	}

	switch spec.Kind {
	case model.KindEmail:
		add(RuleEmail, Params{})
	case model.KindPhone:
		add(RulePhone, Params{})
	case model.KindDate:
		add(RuleDate, Params{MinDate: c.MinDate, MaxDate: c.MaxDate})
		if c.FutureOnly {
			add(RuleFutureDate, Params{})
		}
		if c.PastOrToday {
			add(RulePastDate, Params{})
		}
	case model.KindNumeric:
		add(RuleNumericRange, Params{Min: c.Min, Max: c.Max})
	case model.KindDropdown, model.KindMultiCheckbox:
		opts := make([]string, 0, len(c.Options))
		for _, o := range c.Options {
			opts = append(opts, o.Value)
		}
		add(RuleOneOf, Params{Options: opts, Placeholder: placeholderOf(spec)})
	}

	if c.MinLength > 0 {
		add(RuleMinLength, Params{Min: model.IntPtr(c.MinLength)})
	}
	if c.MaxLength > 0 {
		add(RuleMaxLength, Params{Max: model.IntPtr(c.MaxLength)})
	}
	if c.Pattern != "" {
		// CheckSpec already compiled it once
		add(RuleRegex, Params{Pattern: c.Pattern, Message: c.PatternMessage, re: regexp.MustCompile(c.Pattern)})
	}
	return rules, nil
}

// CheckSpec lists the structural defects of spec; nil means well formed
func CheckSpec(spec model.FieldSpec) []string {
	var problems []string
	c := spec.Constraints

	if strings.TrimSpace(spec.Key) == "" {
		problems = append(problems, "empty key")
	}
	switch spec.Kind {
	case model.KindText, model.KindEmail, model.KindPhone, model.KindDate,
		model.KindNumeric, model.KindTextArea:
	case model.KindDropdown, model.KindMultiCheckbox:
		if len(c.Options) == 0 {
			problems = append(problems, "no options declared")
		}
		seen := map[string]bool{}
		for _, o := range c.Options {
			if seen[o.Value] {
				problems = append(problems, fmt.Sprintf("duplicate option %q", o.Value))
			}
			seen[o.Value] = true
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", spec.Kind))
	}

	if c.MinLength < 0 || c.MaxLength < 0 {
		problems = append(problems, "negative length bound")
	}
	if c.MaxLength > 0 && c.MinLength > c.MaxLength {
		problems = append(problems, "minLength exceeds maxLength")
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		problems = append(problems, "min exceeds max")
	}
	if c.MinDate != nil && c.MaxDate != nil && c.MinDate.After(*c.MaxDate) {
		problems = append(problems, "minDate after maxDate")
	}
	if c.FutureOnly && c.PastOrToday {
		problems = append(problems, "futureOnly and pastOrToday both set")
	}
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			problems = append(problems, fmt.Sprintf("pattern does not compile: %v", err))
		}
	}
	return problems
}

// Check returns the failure message of the rule for v, or "" when it passes.
// today is the current calendar day in the clinic's time zone.
func (r Rule) Check(v model.Value, today model.Date) string {
	switch r.Type {
	case RuleRequired:
		if isEmpty(v, r.Params.Placeholder) {
			return r.FieldName + " is required"
		}
		return ""
	case RuleEmail:
		if !emailPattern.MatchString(strings.TrimSpace(model.TextOf(v))) {
			return "Please enter a valid email address"
		}
	case RulePhone:
		return checkPhone(v)
	case RuleDate:
		return r.checkDate(v)
	case RuleFutureDate:
		if d, ok := v.(model.Date); ok && !d.After(today) {
			return "Please select a future date"
		}
	case RulePastDate:
		if d, ok := v.(model.Date); ok && d.After(today) {
			return r.FieldName + " cannot be in the future"
		}
	case RuleNumericRange:
		return r.checkRange(v)
	case RuleOneOf:
		return r.checkOneOf(v)
	case RuleMinLength:
		if r.Params.Min != nil && textLen(v) < *r.Params.Min {
			return fmt.Sprintf("%s must be at least %d characters", r.FieldName, *r.Params.Min)
		}
	case RuleMaxLength:
		if r.Params.Max != nil && textLen(v) > *r.Params.Max {
			return fmt.Sprintf("%s must be less than %d characters", r.FieldName, *r.Params.Max)
		}
	case RuleRegex:
		re := r.Params.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(r.Params.Pattern); err != nil {
				return fmt.Sprintf(misconfiguredFmt, r.FieldName)
			}
		}
		if _, ok := v.(model.Text); !ok || !re.MatchString(strings.TrimSpace(model.TextOf(v))) {
			if r.Params.Message != "" {
				return r.Params.Message
			}
			return "Please enter a valid " + r.FieldName
		}
	default:
		return fmt.Sprintf(misconfiguredFmt, r.FieldName)
	}
	return ""
}

func checkPhone(v model.Value) string {
	cleaned := phoneSeparators.ReplaceAllString(model.TextOf(v), "")
	digits := 0
	for _, ch := range cleaned {
		if ch >= '0' && ch <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return "Phone number must be at least 10 digits"
	}
	if !phonePattern.MatchString(cleaned) {
		return "Please enter a valid phone number"
	}
	return ""
}

func (r Rule) checkDate(v model.Value) string {
	d, ok := v.(model.Date)
	if !ok {
		return "Please enter a valid " + r.FieldName
	}
	if r.Params.MinDate != nil && d.Before(*r.Params.MinDate) {
		return fmt.Sprintf("%s must be on or after %s", r.FieldName, r.Params.MinDate.Human())
	}
	if r.Params.MaxDate != nil && d.After(*r.Params.MaxDate) {
		return fmt.Sprintf("%s must be on or before %s", r.FieldName, r.Params.MaxDate.Human())
	}
	return ""
}

func (r Rule) checkRange(v model.Value) string {
	n, err := strconv.Atoi(strings.TrimSpace(model.TextOf(v)))
	if err != nil {
		return r.FieldName + " must be a whole number"
	}
	lo, hi := r.Params.Min, r.Params.Max
	switch {
	case lo != nil && hi != nil && (n < *lo || n > *hi):
		return fmt.Sprintf("%s must be between %d and %d", r.FieldName, *lo, *hi)
	case lo != nil && hi == nil && n < *lo:
		return fmt.Sprintf("%s must be at least %d", r.FieldName, *lo)
	case hi != nil && lo == nil && n > *hi:
		return fmt.Sprintf("%s must be at most %d", r.FieldName, *hi)
	}
	return ""
}

func (r Rule) checkOneOf(v model.Value) string {
	invalid := "Please select a valid " + r.FieldName
	allowed := func(s string) bool {
		for _, o := range r.Params.Options {
			if o == s {
				return true
			}
		}
		return false
	}

	switch x := v.(type) {
	case model.Text:
		s := strings.TrimSpace(string(x))
		if s == r.Params.Placeholder || !allowed(s) {
			return invalid
		}
	case model.Selection:
		for _, s := range x {
			if !allowed(s) {
				return invalid
			}
		}
	default:
		return invalid
	}
	return ""
}

func isEmpty(v model.Value, placeholder string) bool {
	if model.IsUnset(v) {
		return true
	}
	if placeholder != "" {
		if t, ok := v.(model.Text); ok && strings.TrimSpace(string(t)) == placeholder {
			return true
		}
	}
	return false
}

func textLen(v model.Value) int {
	return utf8.RuneCountInString(strings.TrimSpace(model.TextOf(v)))
}

func displayName(spec model.FieldSpec) string {
	if spec.Label != "" {
		return spec.Label
	}
	return spec.Key
}

func placeholderOf(spec model.FieldSpec) string {
	if spec.Kind != model.KindDropdown {
		return ""
	}
	if spec.Constraints.Placeholder != "" {
		return spec.Constraints.Placeholder
	}
	return model.Placeholder
}
