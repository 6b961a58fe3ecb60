package scoring

import (
	"strconv"
	"strings"
	"unicode"

	"tmsintake/internal/model"
)

// Band is an inclusive score range with a severity label
type Band struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// Instrument describes a scored questionnaire
type Instrument struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
	MaxScore  int    `json:"maxScore"`
	Bands     []Band `json:"bands"`
}

// Preview is an advisory running total. Severity is only set once every
// question has an answer.
type Preview struct {
	Score    int    `json:"score"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
	Severity string `json:"severity,omitempty"`
}

var (
	BDI = Instrument{
		Name:      "BDI-II",
		Questions: 21,
		MaxScore:  63,
		Bands: []Band{
			{Min: 0, Max: 13, Label: "minimal"},
			{Min: 14, Max: 19, Label: "mild"},
			{Min: 20, Max: 28, Label: "moderate"},
			{Min: 29, Max: 63, Label: "severe"},
		},
	}

	PHQ9 = Instrument{
		Name:      "PHQ-9",
		Questions: 9,
		MaxScore:  27,
		Bands: []Band{
			{Min: 0, Max: 4, Label: "minimal"},
			{Min: 5, Max: 9, Label: "mild"},
			{Min: 10, Max: 14, Label: "moderate"},
			{Min: 15, Max: 19, Label: "moderately severe"},
			{Min: 20, Max: 27, Label: "severe"},
		},
	}
)

// Weight maps an option value to its numeric weight. Letter suffixes such as
// "1a" or "3b" mark alternative statements at the same level, so non-digits
// are stripped before parsing. Values without digits weigh 0.
func Weight(option string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, option)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Score sums the weights of the answered questions among the first
// `questions` indices. Unanswered questions contribute 0.
func Score(responses model.Responses, questions int) int {
	total := 0
	for idx, option := range responses {
		if idx < 0 || idx >= questions {
			continue
		}
		total += Weight(option)
	}
	return total
}

// Answered counts in-range questions with a non-placeholder answer
func Answered(responses model.Responses, questions int) int {
	n := 0
	for idx, option := range responses {
		if idx >= 0 && idx < questions && option != "" {
			n++
		}
	}
	return n
}

// Responses builds an assessment response from question values keyed by
// keys[i]. Unset values and the dropdown placeholder are left out.
func Responses(values model.Values, keys []string) model.Responses {
	out := make(model.Responses, len(keys))
	for i, key := range keys {
		text := strings.TrimSpace(model.TextOf(values[key]))
		if text == "" || text == model.Placeholder {
			continue
		}
		out[i] = text
	}
	return out
}

// Severity returns the band label for score, or "" when no band matches
func (in Instrument) Severity(score int) string {
	for _, b := range in.Bands {
		if score >= b.Min && score <= b.Max {
			return b.Label
		}
	}
	return ""
}

// Preview computes the live running total
func (in Instrument) Preview(responses model.Responses) Preview {
	p := Preview{
		Score:    Score(responses, in.Questions),
		Answered: Answered(responses, in.Questions),
		Total:    in.Questions,
	}
	p.Complete = p.Answered == p.Total
	if p.Complete {
		p.Severity = in.Severity(p.Score)
	}
	return p
}
