package service

import (
	"strings"

	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/scoring"
)

// phenoAgeAliases maps each PhenoAge model field to the free-text names a
// lab panel or wearable export is likely to use for it. Multi-word aliases
// match by substring; single-word aliases must appear as a whole word so
// "alp" never fires inside "alpha".
var phenoAgeAliases = map[string][]string{
	scoring.FieldAlbumin:           {"albumin", "serum albumin"},
	scoring.FieldCreatinine:        {"creatinine", "serum creatinine"},
	scoring.FieldGlucose:           {"glucose", "fasting glucose", "blood glucose"},
	scoring.FieldCRP:               {"crp", "c-reactive protein", "c reactive protein", "hs-crp"},
	scoring.FieldLymphocytePercent: {"lymphocyte", "lymphocyte percentage", "lymphocyte percent"},
	scoring.FieldMCV:               {"mcv", "mean corpuscular volume"},
	scoring.FieldRDW:               {"rdw", "red cell distribution width"},
	scoring.FieldALP:               {"alp", "alkaline phosphatase"},
	scoring.FieldWBC:               {"wbc", "white blood cell", "white blood cell count"},
}

// fieldOrder keeps mapping deterministic regardless of alias map iteration.
var fieldOrder = []string{
	scoring.FieldAlbumin,
	scoring.FieldCreatinine,
	scoring.FieldGlucose,
	scoring.FieldCRP,
	scoring.FieldLymphocytePercent,
	scoring.FieldMCV,
	scoring.FieldRDW,
	scoring.FieldALP,
	scoring.FieldWBC,
}

// buildPhenoAgeInput assembles the PhenoAge input map from raw measurements
// plus the user's chronological age. The first measurement matching a field
// wins; fields with no matching measurement are left absent and fall to the
// engine's fill-with-optimal policy.
func buildPhenoAgeInput(measurements []domain.BiomarkerMeasurement, userAge int) scoring.Biomarkers {
	input := scoring.Biomarkers{
		scoring.FieldAgeYears: float64(userAge),
	}

	for _, field := range fieldOrder {
		for _, m := range measurements {
			if matchesField(m.Name, phenoAgeAliases[field]) {
				input[field] = m.Value
				break
			}
		}
	}

	return input
}

// matchesField reports whether a measurement name refers to one of the
// field's aliases.
func matchesField(name string, aliases []string) bool {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	nameWords := strings.FieldsFunc(nameLower, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ','
	})

	for _, alias := range aliases {
		if nameLower == alias {
			return true
		}
		if strings.Contains(alias, " ") || strings.Contains(alias, "-") {
			if strings.Contains(nameLower, alias) {
				return true
			}
			continue
		}
		for _, word := range nameWords {
			if word == alias {
				return true
			}
		}
	}
	return false
}
