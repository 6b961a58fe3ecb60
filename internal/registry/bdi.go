package registry

import (
	"tmsintake/internal/model"
	"tmsintake/internal/scoring"
)

// item is one questionnaire statement group
type item struct {
	Title   string
	Options []model.Option
}

// bdiItems are the 21 BDI-II items. Sleep and appetite use lettered
// options at the same weight for opposite directions of change.
var bdiItems = []item{
	{
		Title: "Sadness",
		Options: []model.Option{
			{Label: "I do not feel sad.", Value: "0"},
			{Label: "I feel sad much of the time.", Value: "1"},
			{Label: "I am sad all the time.", Value: "2"},
			{Label: "I am so sad or unhappy that I can't stand it.", Value: "3"},
		},
	},
	{
		Title: "Pessimism",
		Options: []model.Option{
			{Label: "I am not discouraged about my future.", Value: "0"},
			{Label: "I feel more discouraged about my future than I used to.", Value: "1"},
			{Label: "I do not expect things to work out for me.", Value: "2"},
			{Label: "I feel my future is hopeless and will only get worse.", Value: "3"},
		},
	},
	{
		Title: "Past Failure",
		Options: []model.Option{
			{Label: "I do not feel like a failure.", Value: "0"},
			{Label: "I have failed more than I should have.", Value: "1"},
			{Label: "As I look back, I see a lot of failures.", Value: "2"},
			{Label: "I feel I am a total failure as a person.", Value: "3"},
		},
	},
	{
		Title: "Loss of Pleasure",
		Options: []model.Option{
			{Label: "I get as much pleasure as I ever did from the things I enjoy.", Value: "0"},
			{Label: "I don't enjoy things as much as I used to.", Value: "1"},
			{Label: "I get very little pleasure from the things I used to enjoy.", Value: "2"},
			{Label: "I can't get any pleasure from the things I used to enjoy.", Value: "3"},
		},
	},
	{
		Title: "Guilty Feelings",
		Options: []model.Option{
			{Label: "I don't feel particularly guilty.", Value: "0"},
			{Label: "I feel guilty over many things I have done or should have done.", Value: "1"},
			{Label: "I feel quite guilty most of the time.", Value: "2"},
			{Label: "I feel guilty all of the time.", Value: "3"},
		},
	},
	{
		Title: "Punishment Feelings",
		Options: []model.Option{
			{Label: "I don't feel I am being punished.", Value: "0"},
			{Label: "I feel I may be punished.", Value: "1"},
			{Label: "I expect to be punished.", Value: "2"},
			{Label: "I feel I am being punished.", Value: "3"},
		},
	},
	{
		Title: "Self-Dislike",
		Options: []model.Option{
			{Label: "I feel the same about myself as ever.", Value: "0"},
			{Label: "I have lost confidence in myself.", Value: "1"},
			{Label: "I am disappointed in myself.", Value: "2"},
			{Label: "I dislike myself.", Value: "3"},
		},
	},
	{
		Title: "Self-Criticalness",
		Options: []model.Option{
			{Label: "I don't criticize or blame myself more than usual.", Value: "0"},
			{Label: "I am more critical of myself than I used to be.", Value: "1"},
			{Label: "I criticize myself for all of my faults.", Value: "2"},
			{Label: "I blame myself for everything bad that happens.", Value: "3"},
		},
	},
	{
		Title: "Suicidal Thoughts or Wishes",
		Options: []model.Option{
			{Label: "I don't have any thoughts of killing myself.", Value: "0"},
			{Label: "I have thoughts of killing myself, but I would not carry them out.", Value: "1"},
			{Label: "I would like to kill myself.", Value: "2"},
			{Label: "I would kill myself if I had the chance.", Value: "3"},
		},
	},
	{
		Title: "Crying",
		Options: []model.Option{
			{Label: "I don't cry anymore than I used to.", Value: "0"},
			{Label: "I cry more than I used to.", Value: "1"},
			{Label: "I cry over every little thing.", Value: "2"},
			{Label: "I feel like crying, but I can't.", Value: "3"},
		},
	},
	{
		Title: "Agitation",
		Options: []model.Option{
			{Label: "I am no more restless or wound up than usual.", Value: "0"},
			{Label: "I feel more restless or wound up than usual.", Value: "1"},
			{Label: "I am so restless or agitated, it's hard to stay still.", Value: "2"},
			{Label: "I am so restless or agitated that I have to keep moving or doing something.", Value: "3"},
		},
	},
	{
		Title: "Loss of Interest",
		Options: []model.Option{
			{Label: "I have not lost interest in other people or activities.", Value: "0"},
			{Label: "I am less interested in other people or things than before.", Value: "1"},
			{Label: "I have lost most of my interest in other people or things.", Value: "2"},
			{Label: "It's hard to get interested in anything.", Value: "3"},
		},
	},
	{
		Title: "Indecisiveness",
		Options: []model.Option{
			{Label: "I make decisions about as well as ever.", Value: "0"},
			{Label: "I find it more difficult to make decisions than usual.", Value: "1"},
			{Label: "I have much greater difficulty in making decisions than I used to.", Value: "2"},
			{Label: "I have trouble making any decisions.", Value: "3"},
		},
	},
	{
		Title: "Worthlessness",
		Options: []model.Option{
			{Label: "I do not feel I am worthless.", Value: "0"},
			{Label: "I don't consider myself as worthwhile and useful as I used to.", Value: "1"},
			{Label: "I feel more worthless as compared to others.", Value: "2"},
			{Label: "I feel utterly worthless.", Value: "3"},
		},
	},
	{
		Title: "Loss of Energy",
		Options: []model.Option{
			{Label: "I have as much energy as ever.", Value: "0"},
			{Label: "I have less energy than I used to have.", Value: "1"},
			{Label: "I don't have enough energy to do very much.", Value: "2"},
			{Label: "I don't have enough energy to do anything.", Value: "3"},
		},
	},
	{
		Title: "Changes in Sleeping Pattern",
		Options: []model.Option{
			{Label: "I have not experienced any change in my sleeping.", Value: "0"},
			{Label: "I sleep somewhat more than usual.", Value: "1a"},
			{Label: "I sleep somewhat less than usual.", Value: "1b"},
			{Label: "I sleep a lot more than usual.", Value: "2a"},
			{Label: "I sleep a lot less than usual.", Value: "2b"},
			{Label: "I sleep most of the day.", Value: "3a"},
			{Label: "I wake up 1-2 hours early and can't get back to sleep.", Value: "3b"},
		},
	},
	{
		Title: "Irritability",
		Options: []model.Option{
			{Label: "I am not more irritable than usual.", Value: "0"},
			{Label: "I am more irritable than usual.", Value: "1"},
			{Label: "I am much more irritable than usual.", Value: "2"},
			{Label: "I am irritable all the time.", Value: "3"},
		},
	},
	{
		Title: "Changes in Appetite",
		Options: []model.Option{
			{Label: "I have not experienced any change in my appetite.", Value: "0"},
			{Label: "My appetite is somewhat less than usual.", Value: "1a"},
			{Label: "My appetite is somewhat greater than usual.", Value: "1b"},
			{Label: "My appetite is much less than before.", Value: "2a"},
			{Label: "My appetite is much greater than usual.", Value: "2b"},
			{Label: "I have no appetite at all.", Value: "3a"},
			{Label: "I crave food all the time.", Value: "3b"},
		},
	},
	{
		Title: "Concentration Difficulty",
		Options: []model.Option{
			{Label: "I can concentrate as well as ever.", Value: "0"},
			{Label: "I can't concentrate as well as usual.", Value: "1"},
			{Label: "It's hard to keep my mind on anything for very long.", Value: "2"},
			{Label: "I find I can't concentrate on anything.", Value: "3"},
		},
	},
	{
		Title: "Tiredness or Fatigue",
		Options: []model.Option{
			{Label: "I am no more tired or fatigued than usual.", Value: "0"},
			{Label: "I get more tired or fatigued more easily than usual.", Value: "1"},
			{Label: "I am too tired or fatigued to do a lot of the things I used to do.", Value: "2"},
			{Label: "I am too tired or fatigued to do most of the things I used to do", Value: "3"},
		},
	},
	{
		Title: "Loss of Interest in Sex",
		Options: []model.Option{
			{Label: "I have not noticed any recent change in my interest in sex.", Value: "0"},
			{Label: "I am less interested in sex than I used to be.", Value: "1"},
			{Label: "I am much less interested in sex now.", Value: "2"},
			{Label: "I have lost interest in sex completely.", Value: "3"},
		},
	},
}

func bdiForm() *Form {
	return assessmentForm(model.FormBDI, "Beck Depression Inventory (BDI-II)", scoring.BDI, bdiItems)
}
