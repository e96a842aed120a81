package catalog

import (
	"strings"

	"github.com/longevity-score-server/internal/domain"
)

// biomarkerRanges is the static optimal/acceptable band table behind the
// deterministic scorer. Weights are relative importance for the weighted
// aggregate, not clinical priorities.
var biomarkerRanges = map[string]domain.BiomarkerRange{
	"glucose": {
		Name: "glucose", Unit: "mg/dL",
		OptimalLow: 70, OptimalHigh: 85,
		AcceptableLow: 65, AcceptableHigh: 100,
		Weight:      10,
		Description: "Fasting glucose",
	},
	"hba1c": {
		Name: "hba1c", Unit: "%",
		OptimalLow: 4.5, OptimalHigh: 5.4,
		AcceptableLow: 4.0, AcceptableHigh: 5.7,
		Weight:      12,
		Description: "Hemoglobin A1c (3-month glucose average)",
	},
	"ldl": {
		Name: "ldl", Unit: "mg/dL",
		OptimalLow: 50, OptimalHigh: 100,
		AcceptableLow: 40, AcceptableHigh: 130,
		Weight:      10,
		Description: "LDL cholesterol",
	},
	"hdl": {
		Name: "hdl", Unit: "mg/dL",
		OptimalLow: 60, OptimalHigh: 90,
		AcceptableLow: 40, AcceptableHigh: 100,
		Weight:         8,
		HigherIsBetter: true,
		Description:    "HDL cholesterol",
	},
	"triglycerides": {
		Name: "triglycerides", Unit: "mg/dL",
		OptimalLow: 50, OptimalHigh: 100,
		AcceptableLow: 40, AcceptableHigh: 150,
		Weight:      8,
		Description: "Triglycerides",
	},
	"crp": {
		Name: "crp", Unit: "mg/L",
		OptimalLow: 0.0, OptimalHigh: 1.0,
		AcceptableLow: 0.0, AcceptableHigh: 3.0,
		Weight:      9,
		Description: "C-reactive protein (inflammation marker)",
	},
	"vitamin_d": {
		Name: "vitamin_d", Unit: "ng/mL",
		OptimalLow: 40, OptimalHigh: 60,
		AcceptableLow: 30, AcceptableHigh: 80,
		Weight:         7,
		HigherIsBetter: true,
		Description:    "Vitamin D (25-OH)",
	},
	"insulin": {
		Name: "insulin", Unit: "μIU/mL",
		OptimalLow: 2, OptimalHigh: 5,
		AcceptableLow: 1, AcceptableHigh: 10,
		Weight:      9,
		Description: "Fasting insulin",
	},
	"blood_pressure_systolic": {
		Name: "blood_pressure_systolic", Unit: "mmHg",
		OptimalLow: 110, OptimalHigh: 120,
		AcceptableLow: 100, AcceptableHigh: 130,
		Weight:      7,
		Description: "Systolic blood pressure",
	},
	"blood_pressure_diastolic": {
		Name: "blood_pressure_diastolic", Unit: "mmHg",
		OptimalLow: 70, OptimalHigh: 80,
		AcceptableLow: 60, AcceptableHigh: 85,
		Weight:      7,
		Description: "Diastolic blood pressure",
	},
}

// rangeAliases maps common free-text measurement names onto the static
// range table keys.
var rangeAliases = map[string]string{
	"fasting glucose":          "glucose",
	"blood glucose":            "glucose",
	"hemoglobin a1c":           "hba1c",
	"a1c":                      "hba1c",
	"ldl cholesterol":          "ldl",
	"hdl cholesterol":          "hdl",
	"triglyceride":             "triglycerides",
	"c-reactive protein":       "crp",
	"c reactive protein":       "crp",
	"hs-crp":                   "crp",
	"vitamin d":                "vitamin_d",
	"25-hydroxyvitamin d":      "vitamin_d",
	"fasting insulin":          "insulin",
	"systolic blood pressure":  "blood_pressure_systolic",
	"blood pressure systolic":  "blood_pressure_systolic",
	"diastolic blood pressure": "blood_pressure_diastolic",
	"blood pressure diastolic": "blood_pressure_diastolic",
}

// Ranges returns the static range table.
func Ranges() map[string]domain.BiomarkerRange {
	return biomarkerRanges
}

// RangeFor returns the static range definition for a biomarker key.
func RangeFor(key string) (domain.BiomarkerRange, bool) {
	r, ok := biomarkerRanges[key]
	return r, ok
}

// RangeKeyFor resolves a free-text measurement name to a static range table
// key, via exact key match first and the alias table second.
func RangeKeyFor(name string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	key := strings.ReplaceAll(lowered, " ", "_")
	if _, ok := biomarkerRanges[key]; ok {
		return key, true
	}
	if alias, ok := rangeAliases[lowered]; ok {
		return alias, true
	}
	return "", false
}
