package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidValue is returned when a raw input cannot be represented for a field kind
var ErrInvalidValue = errors.New("invalid value")

// Value is the current content of a field. A nil Value means unset.
// The concrete type is one of Text, Date or Selection.
type Value interface {
	value()
}

// Text holds free text, emails, phones, numerics and single-select choices
type Text string

// Date is a civil calendar date with no time-of-day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Selection is the set of chosen options of a multi-checkbox field
type Selection []string

func (Text) value()      {}
func (Date) value()      {}
func (Selection) value() {}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. For timestamps the
// calendar date written in the string is used, not the instant's date in UTC.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidValue, s)
}

// MustDate builds a Date from its parts
func MustDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date was never set
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of the date in loc
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than o
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o
func (d Date) After(o Date) bool {
	return o.Before(d)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Human formats the date for people, e.g. "June 15, 2024"
func (d Date) Human() string {
	return d.Time(time.UTC).Format("January 2, 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewSelection returns a sorted selection without duplicates or blanks
func NewSelection(values ...string) Selection {
	seen := make(map[string]struct{}, len(values))
	out := make(Selection, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether option v is selected
func (s Selection) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Values is the value bag of a form, keyed by field key
type Values map[string]Value

// Clone returns a shallow copy; Value implementations are immutable by convention
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// IsUnset reports whether v carries no user input
func IsUnset(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case Text:
		return strings.TrimSpace(string(x)) == ""
	case Date:
		return x.IsZero()
	case Selection:
		return len(x) == 0
	}
	return true
}

// TextOf returns the textual content of v, or "" when v is not Text
func TextOf(v Value) string {
	if t, ok := v.(Text); ok {
		return string(t)
	}
	return ""
}

// EncodeValue converts v to its JSON wire form
func EncodeValue(v Value) interface{} {
	switch x := v.(type) {
	case Text:
		return string(x)
	case Date:
		return x.String()
	case Selection:
		return []string(x)
	}
	return nil
}

// EncodeValues converts a value bag to its JSON wire form
func EncodeValues(values Values) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = EncodeValue(v)
	}
	return out
}

// DecodeValue converts a decoded JSON value into the Value for kind.
// Date strings that do not parse are kept as Text so that validation can
// report them instead of silently dropping the input.
func DecodeValue(kind FieldKind, raw interface{}) (Value, error) {
	if raw == nil {
		return nil, nil
	}

	switch kind {
	case KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: date must be a string", ErrInvalidValue)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		d, err := ParseDate(s)
		if err != nil {
			return Text(s), nil
		}
		return d, nil

	case KindMultiCheckbox:
		switch x := raw.(type) {
		case []string:
			return NewSelection(x...), nil
		case []interface{}:
			items := make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: selection entries must be strings", ErrInvalidValue)
				}
				items = append(items, s)
			}
			return NewSelection(items...), nil
		case map[string]interface{}:
			// checkbox maps as produced by the mobile screens: {"ASTHMA": true}
			items := make([]string, 0, len(x))
			for k, checked := range x {
				if b, ok := checked.(bool); ok && b {
					items = append(items, k)
				}
			}
			return NewSelection(items...), nil
		}
		return nil, fmt.Errorf("%w: selection must be a list of strings", ErrInvalidValue)
	}

	switch x := raw.(type) {
	case string:
		return Text(x), nil
	case float64:
		return Text(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case int:
		return Text(strconv.Itoa(x)), nil
	case json.Number:
		return Text(x.String()), nil
	}
	return nil, fmt.Errorf("%w: %s field expects a string", ErrInvalidValue, kind)
}
