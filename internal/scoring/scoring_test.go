package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tmsintake/internal/model"
)

func TestWeight(t *testing.T) {
	assert.Equal(t, 0, Weight("0"))
	assert.Equal(t, 2, Weight("2"))
	assert.Equal(t, 1, Weight("1a"))
	assert.Equal(t, 3, Weight("3b"))
	assert.Equal(t, 0, Weight("Select"))
	assert.Equal(t, 0, Weight(""))
}

func TestScore_SuffixedResponses(t *testing.T) {
	responses := model.Responses{0: "2", 15: "1a", 17: "3b"}
	assert.Equal(t, 6, Score(responses, BDI.Questions))
}

func TestScore_IgnoresOutOfRange(t *testing.T) {
	responses := model.Responses{0: "3", 9: "3", -1: "3"}
	assert.Equal(t, 3, Score(responses, PHQ9.Questions))
}

func TestResponses(t *testing.T) {
	values := model.Values{
		"q1": model.Text("2"),
		"q2": model.Text(model.Placeholder),
		"q3": model.Text("1a"),
	}
	got := Responses(values, []string{"q1", "q2", "q3", "q4"})
	assert.Equal(t, model.Responses{0: "2", 2: "1a"}, got)
}

func TestPreview(t *testing.T) {
	partial := PHQ9.Preview(model.Responses{0: "3", 1: "2"})
	assert.Equal(t, 5, partial.Score)
	assert.Equal(t, 2, partial.Answered)
	assert.False(t, partial.Complete)
	assert.Empty(t, partial.Severity)

	full := model.Responses{}
	for i := 0; i < PHQ9.Questions; i++ {
		full[i] = "2"
	}
	p := PHQ9.Preview(full)
	assert.Equal(t, 18, p.Score)
	assert.True(t, p.Complete)
	assert.Equal(t, "moderately severe", p.Severity)
}

func TestSeverity(t *testing.T) {
	cases := map[int]string{0: "minimal", 13: "minimal", 14: "mild", 28: "moderate", 29: "severe", 63: "severe", 64: ""}
	for score, want := range cases {
		assert.Equal(t, want, BDI.Severity(score), "score %d", score)
	}
}
