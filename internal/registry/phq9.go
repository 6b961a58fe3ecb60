package registry

import (
	"tmsintake/internal/model"
	"tmsintake/internal/scoring"
)

var phq9Frequency = []model.Option{
	{Label: "Not at all", Value: "0"},
	{Label: "Several days", Value: "1"},
	{Label: "More than half the days", Value: "2"},
	{Label: "Nearly every day", Value: "3"},
}

var phq9Prompts = []string{
	"Little interest or pleasure in doing things",
	"Feeling down, depressed, or hopeless",
	"Trouble falling or staying asleep, or sleeping too much",
	"Feeling tired or having little energy",
	"Poor appetite or overeating",
	"Feeling bad about yourself, or that you are a failure or have let yourself or your family down",
	"Trouble concentrating on things, such as reading the newspaper or watching television",
	"Moving or speaking so slowly that other people could have noticed, or the opposite: being so fidgety or restless that you have been moving around a lot more than usual",
	"Thoughts that you would be better off dead or of hurting yourself in some way",
}

func phq9Form() *Form {
	items := make([]item, len(phq9Prompts))
	for i, p := range phq9Prompts {
		items[i] = item{Title: p, Options: phq9Frequency}
	}
	f := assessmentForm(model.FormPHQ9, "Patient Health Questionnaire (PHQ-9)", scoring.PHQ9, items)
	f.Description = "Over the last 2 weeks, how often have you been bothered by any of the following problems?"
	return f
}
