package catalog

import "strings"

// correlationGroups clusters biomarker names that track the same underlying
// physiology. Markers in one group must not have their bonus years summed
// independently; the aggregator takes the group maximum instead.
// Membership is keyword-substring matching over free-text study names, a
// deliberately blunt heuristic with fixed vocabulary.
var correlationGroups = []struct {
	name     string
	keywords []string
}{
	{"body_composition", []string{
		"body mass index", "bmi", "body fat", "waist", "waist circumference",
		"waist-to-hip", "body weight", "obesity",
	}},
	{"lipids", []string{
		"cholesterol", "ldl", "hdl", "triglyceride", "apolipoprotein",
		"lipoprotein",
	}},
	{"glucose_metabolism", []string{
		"glucose", "hba1c", "hemoglobin a1c", "glycated", "insulin",
		"diabetes",
	}},
	{"inflammation", []string{
		"c-reactive protein", "crp", "white blood cell", "wbc",
		"inflammation", "interleukin",
	}},
	{"blood_cells", []string{
		"hemoglobin", "hematocrit", "red blood cell", "lymphocyte",
		"platelet", "mean corpuscular",
	}},
	{"cardiovascular", []string{
		"blood pressure", "heart rate", "pulse", "systolic", "diastolic",
	}},
	{"kidney", []string{
		"creatinine", "urea", "egfr", "albumin", "protein",
	}},
	{"liver", []string{
		"alt", "ast", "gamma-glutamyl", "ggt", "bilirubin", "alkaline phosphatase",
	}},
	{"fitness", []string{
		"vo2", "exercise capacity", "mets", "grip strength", "gait speed",
		"physical", "peak expiratory",
	}},
	{"hormones", []string{
		"testosterone", "estrogen", "vitamin d", "thyroid", "cortisol",
	}},
}

// CorrelationGroup returns the physiological cluster a biomarker belongs
// to. Biomarkers matching no cluster form singleton groups keyed by their
// own name, so they aggregate independently.
func CorrelationGroup(biomarkerName string) string {
	nameLower := strings.ToLower(biomarkerName)

	for _, group := range correlationGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(nameLower, keyword) {
				return group.name
			}
		}
	}

	return "independent_" + biomarkerName
}
