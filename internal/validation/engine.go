package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tmsintake/internal/model"
)

// ErrorMap maps a field key to its error message. Only failing fields appear.
type ErrorMap map[string]string

// Valid reports whether the form is submittable
func (e ErrorMap) Valid() bool {
	return len(e) == 0
}

// Clone returns a copy of the map
func (e ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Report is the outcome of a submit-time validation pass
type Report struct {
	Errors       ErrorMap `json:"errors"`
	Keys         []string `json:"keys"`
	FirstInvalid string   `json:"firstInvalid,omitempty"`
	Missing      []int    `json:"missing,omitempty"`
	Summary      string   `json:"summary,omitempty"`
}

// ValidateField returns the first failing message for v, or "".
// Optional fields with no value skip every check.
func ValidateField(v model.Value, spec model.FieldSpec, now time.Time) string {
	rules, err := RulesFor(spec)
	if err != nil {
		return fmt.Sprintf(misconfiguredFmt, displayName(spec))
	}

	if !spec.Required && isEmpty(v, placeholderOf(spec)) {
		return ""
	}

	today := model.DateOf(now)
	for _, r := range rules {
		if msg := r.Check(v, today); msg != "" {
			return msg
		}
	}
	return ""
}

// Validate runs every field of specs against values. now must already be in
// the clinic's time zone; its calendar date is "today" for date rules.
func Validate(values model.Values, specs []model.FieldSpec, now time.Time) ErrorMap {
	errs := ErrorMap{}
	for _, spec := range specs {
		if msg := ValidateField(values[spec.Key], spec, now); msg != "" {
			errs[spec.Key] = msg
		}
	}
	return errs
}

// MissingResponses returns the sorted 1-based numbers of the questions in
// [0, total) without an answer, and the summary shown to the user.
func MissingResponses(responses model.Responses, total int) ([]int, string) {
	var missing []int
	for i := 0; i < total; i++ {
		answer := strings.TrimSpace(responses[i])
		if answer == "" || answer == model.Placeholder {
			missing = append(missing, i+1)
		}
	}
	if len(missing) == 0 {
		return nil, ""
	}
	nums := make([]string, len(missing))
	for i, n := range missing {
		nums[i] = strconv.Itoa(n)
	}
	return missing, "Please answer question(s): " + strings.Join(nums, ", ")
}

// Summarize orders errs by the field order of specs. Keys not declared in
// specs sort after the declared ones.
func Summarize(errs ErrorMap, specs []model.FieldSpec) Report {
	r := Report{Errors: errs.Clone()}

	declared := make(map[string]bool, len(specs))
	for _, spec := range specs {
		declared[spec.Key] = true
		if _, ok := errs[spec.Key]; ok {
			r.Keys = append(r.Keys, spec.Key)
		}
	}
	var extra []string
	for k := range errs {
		if !declared[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	r.Keys = append(r.Keys, extra...)

	if len(r.Keys) > 0 {
		r.FirstInvalid = r.Keys[0]
		msgs := make([]string, len(r.Keys))
		for i, k := range r.Keys {
			msgs[i] = errs[k]
		}
		r.Summary = strings.Join(msgs, "\n")
	}
	return r
}
