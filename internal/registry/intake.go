package registry

import (
	"tmsintake/internal/model"
)

const ssnPattern = `^\d{3}-?\d{2}-?\d{4}$`

var consultationTypes = options(
	"Consultation",
	"Family Counseling",
	"Anxiety Disorder",
	"Depression",
	"TMS Treatment",
)

var medicalConditions = []string{
	"ASTHMA", "HEADACHE", "HEART DISEASE", "APPETITE PROBLEMS", "WEIGHT LOSS/GAIN",
	"SLEEP DIFFICULTY", "ANXIETY", "STOMACH TROUBLE", "CONSTIPATION", "GLAUCOMA",
	"AIDS/HIV", "HEPATITIS", "THYROID DISEASE", "SYPHILIS", "SEIZURES",
	"GONORRHEA", "TB", "HIGH BLOOD PRESSURE", "DIABETES", "DRINKING PROBLEMS",
	"SUBSTANCE ABUSE", "FATIGUE", "LOSS OF CONCENTRATION", "RECURRENT THOUGHTS", "SEXUAL PROBLEMS",
}

// medicationCategories keeps declaration order for rendering
var medicationCategories = []struct {
	Name  string
	Drugs []string
}{
	{"SSRI", []string{
		"Sertraline (Zoloft)", "Fluoxetine (Prozac)", "Citalopram (Celexa)", "Fluvoxamine (Luvox)",
		"Paroxetine (Paxil)", "Paroxetine CR (Paxil CR)", "Escitalopram (Lexapro)", "Vilazodone (Viibryd)",
		"Vortioxetine (Brintellix/Trintellix)",
	}},
	{"SNRI", []string{
		"Venlafaxine (Effexor) IR/XR", "Duloxetine (Cymbalta)", "Desvenlafaxine (Pristiq)",
		"Levomilnacipran (Fetzima)", "Milnacipran (Savella)",
	}},
	{"TRICYCLIC", []string{
		"Amitriptyline (Elavil)", "Imipramine (Tofranil)", "Desipramine (Norpramin/Pertofrane)",
		"Trimipramine (Surmontil)", "Clomipramine (Anafranil)", "Maprotiline (Ludiomil)", "Doxepin (Sinequan)",
		"Nomifensine (Merital)", "Nortriptyline (Pamelor/Aventyl)", "Protriptyline (Vivactil)", "Amoxapine (Asendin)",
	}},
	{"MAOI", []string{
		"Phenelzine (Nardil)", "Selegiline (Emsam/Eldepryl)", "Selegiline patch (Emsam)",
		"Isocarboxazid (Marplan)", "Tranylcypromine (Parnate)",
	}},
	{"ATYPICAL", []string{
		"Bupropion (Wellbutrin) SR XL", "Nefazodone (Serzone/Serzone)", "Trazodone (Desyrel)", "Mirtazapine (Remeron)",
	}},
	{"AUGMENTING AGENT", []string{
		"Aripiprazole (Abilify)", "Ziprasidone (Geodon)", "Risperidone (Risperdal)", "Quetiapine (Seroquel)",
		"Olanzapine (Zyprexa)", "Asenapine (Saphris)", "Cariprazine (Vraylar)", "Lurasidone (Latuda)",
		"Clozapine (Clozaril)", "Paliperidone (Invega)", "Brexpiprazole (Rexulti)",
		"Lithium (Eskalith/Lithobid/Lithonate)", "Gabapentin (Neurontin)", "Lamotrigine (Lamictal)",
		"Topiramate (Topamax)",
	}},
}

func medicationOptions() []model.Option {
	var out []model.Option
	for _, c := range medicationCategories {
		for _, d := range c.Drugs {
			out = append(out, model.Option{Label: d, Value: c.Name + ": " + d})
		}
	}
	return out
}

func contactForm() *Form {
	return &Form{
		Type:       model.FormContact,
		Title:      "Message",
		NameField:  "name",
		EmailField: "email",
		Fields: []model.FieldSpec{
			{Key: "name", Label: "Name", Kind: model.KindText, Required: true,
				Constraints: model.Constraints{MinLength: 2, MaxLength: 100}},
			{Key: "email", Label: "Email", Kind: model.KindEmail, Required: true},
			{Key: "preferredDate", Label: "Preferred Date", Kind: model.KindDate,
				Constraints: model.Constraints{FutureOnly: true}},
			{Key: "consultationType", Label: "Consultation Type", Kind: model.KindDropdown, Required: true,
				Constraints: model.Constraints{Options: consultationTypes},
				Default:     model.Text("Consultation")},
			{Key: "message", Label: "Message", Kind: model.KindTextArea, Required: true,
				Constraints: model.Constraints{MinLength: 10, MaxLength: 5000}},
		},
	}
}

func medicalHistoryForm() *Form {
	yesNo := options("Yes", "No")
	return &Form{
		Type:  model.FormMedicalHistory,
		Title: "Medical History",
		Fields: []model.FieldSpec{
			{Key: "medicalConditions", Label: "Medical Conditions", Kind: model.KindMultiCheckbox,
				Constraints: model.Constraints{Options: options(medicalConditions...)}},
			{Key: "suicidalThoughts", Label: "Suicidal Thoughts", Prompt: "Have you had suicidal thoughts?",
				Kind: model.KindDropdown, Required: true, Constraints: model.Constraints{Options: yesNo}},
			{Key: "attempts", Label: "Attempts", Prompt: "Attempts?",
				Kind: model.KindDropdown, Required: true, Constraints: model.Constraints{Options: yesNo}},
			{Key: "suicidalExplanation", Label: "Suicidal History Explanation", Prompt: "Please explain:",
				Kind: model.KindTextArea},
			{Key: "previousPsychiatrist", Label: "Previous Psychiatrist", Prompt: "Previous Psychiatrist(s) or Therapist:",
				Kind: model.KindTextArea},
			{Key: "psychiatricHospitalizations", Label: "Psychiatric Hospitalizations",
				Prompt: "Psychiatric hospitalizations (Date, Hospital, Location and Treatment):", Kind: model.KindTextArea},
			{Key: "legalCharges", Label: "Legal Charges", Prompt: "History of Legal Charges:",
				Kind: model.KindDropdown, Constraints: model.Constraints{Options: yesNo}},
			{Key: "legalExplanation", Label: "Legal Charges Explanation", Prompt: "Please explain:", Kind: model.KindTextArea},
			{Key: "allergies", Label: "Allergies", Prompt: "List any allergies:", Kind: model.KindTextArea},
			{Key: "signature", Label: "Signature", Prompt: "Signature of responsible party:", Kind: model.KindText, Required: true,
				Constraints: model.Constraints{MinLength: 2}},
		},
		NameField: "signature",
	}
}

func demographicSheetForm() *Form {
	ssn := model.Constraints{Pattern: ssnPattern, PatternMessage: "Please enter a valid Social Security Number"}
	age := model.Constraints{Min: model.IntPtr(0), Max: model.IntPtr(120)}
	return &Form{
		Type:       model.FormDemographicSheet,
		Title:      "Patient Demographic Sheet",
		NameField:  "fullLegalName",
		EmailField: "email",
		Fields: []model.FieldSpec{
			{Key: "fullLegalName", Label: "Full Legal Name", Kind: model.KindText, Required: true,
				Constraints: model.Constraints{MinLength: 2}},
			{Key: "date", Label: "Date", Kind: model.KindDate, Required: true},
			{Key: "phone", Label: "Phone", Kind: model.KindPhone, Required: true},
			{Key: "email", Label: "Email", Kind: model.KindEmail, Required: true},
			{Key: "address", Label: "Address", Kind: model.KindText, Required: true},
			{Key: "cityStateZip", Label: "City, State ZIP", Kind: model.KindText, Required: true},
			{Key: "age", Label: "Age", Kind: model.KindNumeric, Required: true, Constraints: age},
			{Key: "dob", Label: "Date of Birth", Kind: model.KindDate, Required: true,
				Constraints: model.Constraints{PastOrToday: true}},
			{Key: "ssn", Label: "Social Security Number", Kind: model.KindText, Constraints: ssn},
			{Key: "gender", Label: "Gender", Kind: model.KindDropdown, Required: true,
				Constraints: model.Constraints{Options: []model.Option{{Label: "Male", Value: "M"}, {Label: "Female", Value: "F"}}}},
			{Key: "activeDutyServiceMember", Label: "Active Duty Service Member", Kind: model.KindDropdown, Required: true,
				Constraints: model.Constraints{Options: []model.Option{{Label: "Yes", Value: "Y"}, {Label: "No", Value: "N"}}}},
			{Key: "dodBenefit", Label: "DOD Benefit", Kind: model.KindText},
			{Key: "currentEmployer", Label: "Current Employer", Kind: model.KindText},
			{Key: "spouseName", Label: "Spouse Name", Kind: model.KindText},
			{Key: "spouseAge", Label: "Spouse Age", Kind: model.KindNumeric, Constraints: age},
			{Key: "spouseDob", Label: "Spouse DOB", Kind: model.KindDate,
				Constraints: model.Constraints{PastOrToday: true}},
			{Key: "spouseSsn", Label: "Spouse Social Security", Kind: model.KindText, Constraints: ssn},
			{Key: "spouseEmployer", Label: "Spouse Employer", Kind: model.KindText},
			{Key: "referringProvider", Label: "Referring Provider", Kind: model.KindText},
			{Key: "primaryHealthInsurance", Label: "Primary Health Insurance", Kind: model.KindText},
			{Key: "policy", Label: "Policy", Kind: model.KindText},
			{Key: "group", Label: "Group", Kind: model.KindText},
			{Key: "knownMedicalConditions", Label: "Known Medical Conditions", Kind: model.KindTextArea},
			{Key: "drugAllergies", Label: "Drug Allergies", Kind: model.KindTextArea},
			{Key: "currentMedications", Label: "Current Medications", Kind: model.KindTextArea},
		},
	}
}

func preCertMedListForm() *Form {
	return &Form{
		Type:      model.FormPreCertMedList,
		Title:     "Pre-Certification Medication List",
		NameField: "name",
		Fields: []model.FieldSpec{
			{Key: "name", Label: "Name", Kind: model.KindText, Required: true},
			{Key: "dateOfBirth", Label: "Date of Birth", Kind: model.KindDate, Required: true,
				Constraints: model.Constraints{PastOrToday: true}},
			{Key: "medications", Label: "Medications", Kind: model.KindMultiCheckbox,
				Constraints: model.Constraints{Options: medicationOptions()}},
			{Key: "medicationNotes", Label: "Medication Details",
				Prompt: "Dose, start date, end date and reason for discontinuing for each medication tried",
				Kind:   model.KindTextArea},
		},
	}
}
