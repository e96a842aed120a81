package scoring

import (
	"math"
	"sort"

	"github.com/longevity-score-server/internal/domain"
)

// Biomarkers is a PhenoAge input map keyed by the model's field names.
type Biomarkers map[string]float64

// PhenoAge field keys. Units are part of the key on purpose: the formula's
// published coefficients assume them.
const (
	FieldAgeYears          = "age_years"           // years
	FieldAlbumin           = "albumin_g_dl"        // g/dL
	FieldCreatinine        = "creatinine_mg_dl"    // mg/dL
	FieldGlucose           = "glucose_mg_dl"       // mg/dL, fasting
	FieldCRP               = "crp_mg_l"            // mg/L
	FieldLymphocytePercent = "lymphocyte_percent"  // %
	FieldMCV               = "mcv_fl"              // fL
	FieldRDW               = "rdw_percent"         // %
	FieldALP               = "alp_u_l"             // U/L
	FieldWBC               = "wbc_10e3_per_uL"     // 10^3 cells/µL
)

// RequiredBiomarkers lists every field the Levine model consumes, age first.
var RequiredBiomarkers = []string{
	FieldAgeYears,
	FieldAlbumin,
	FieldCreatinine,
	FieldGlucose,
	FieldCRP,
	FieldLymphocytePercent,
	FieldMCV,
	FieldRDW,
	FieldALP,
	FieldWBC,
}

// OptimalTargets are the fixed "ideal" values substituted for missing
// inputs and used as the optimization target. An engineering choice, not
// clinical truth. Age is chronological and is never filled or optimized.
var OptimalTargets = map[string]float64{
	FieldAlbumin:           4.7,
	FieldCreatinine:        0.8,
	FieldGlucose:           85.0,
	FieldCRP:               0.3,
	FieldLymphocytePercent: 35.0,
	FieldMCV:               90.0,
	FieldRDW:               12.5,
	FieldALP:               60.0,
	FieldWBC:               5.5,
}

// Levine (2018) regression coefficients and Gompertz risk constants.
// Copied verbatim from the published model fit; not derivable.
const (
	phenoIntercept    = -19.9067
	coefAlbumin       = -0.0336
	coefCreatinine    = 0.0095
	coefGlucose       = 0.1953
	coefCRP           = 0.0954
	coefLymphocyte    = -0.0120
	coefMCV           = 0.0268
	coefRDW           = 0.3306
	coefALP           = 0.00188
	coefWBC           = 0.0554
	coefAge           = 0.0804
	gompertzGamma     = -1.51714
	gompertzLambda    = 0.0076927
	phenoAlpha        = 141.50225
	phenoBeta         = -0.00553
	phenoScale        = 0.09165
	mortalityRiskMin  = 1e-9
	logDomainFloor    = 1e-9
)

// FillMissing returns a copy of b with every missing model field set to its
// optimal target, plus the names of the fields that were filled. This
// "assume healthy if unknown" substitution makes the model a total function
// over partial input. Age is the one field that cannot be assumed.
func FillMissing(b Biomarkers) (Biomarkers, []string, error) {
	if _, ok := b[FieldAgeYears]; !ok {
		return nil, nil, &domain.MissingInputError{Field: FieldAgeYears}
	}

	filled := make(Biomarkers, len(RequiredBiomarkers))
	for k, v := range b {
		filled[k] = v
	}

	var filledFields []string
	for _, field := range RequiredBiomarkers {
		if field == FieldAgeYears {
			continue
		}
		if _, ok := filled[field]; !ok {
			filled[field] = OptimalTargets[field]
			filledFields = append(filledFields, field)
		}
	}

	return filled, filledFields, nil
}

// ComputePhenoAge calculates phenotypic (biological) age in years from the
// nine clinical biomarkers plus chronological age. Missing biomarkers are
// filled with their optimal targets. Returns an error only when age is
// absent.
func ComputePhenoAge(b Biomarkers) (float64, error) {
	filled, _, err := FillMissing(b)
	if err != nil {
		return 0, err
	}
	return phenoAge(filled), nil
}

// phenoAge evaluates the closed-form model on a complete biomarker map.
func phenoAge(b Biomarkers) float64 {
	// The published coefficients expect SI-ish units; convert from the
	// conventional US lab units the input carries.
	albuminConv := b[FieldAlbumin] * 10.0        // g/dL -> g/L
	creatinineConv := b[FieldCreatinine] * 88.401 // mg/dL -> µmol/L
	glucoseConv := b[FieldGlucose] * 0.0555      // mg/dL -> mmol/L
	crpConv := b[FieldCRP] * 0.1                 // mg/L -> mg/dL

	// CRP is log-transformed; clamp away from zero to stay in the log
	// domain for zero or junk inputs.
	crpConv = math.Max(crpConv, logDomainFloor)

	xb := phenoIntercept +
		coefAlbumin*albuminConv +
		coefCreatinine*creatinineConv +
		coefGlucose*glucoseConv +
		coefCRP*math.Log(crpConv) +
		coefLymphocyte*b[FieldLymphocytePercent] +
		coefMCV*b[FieldMCV] +
		coefRDW*b[FieldRDW] +
		coefALP*b[FieldALP] +
		coefWBC*b[FieldWBC] +
		coefAge*b[FieldAgeYears]

	// Gompertz-based 10-year mortality risk, clamped into (0, 1) so the
	// following logs stay defined.
	m := 1.0 - math.Exp((gompertzGamma*math.Exp(xb))/gompertzLambda)
	m = math.Min(math.Max(m, mortalityRiskMin), 1.0-mortalityRiskMin)

	// inner > 0: log(1-M) < 0 and beta < 0.
	inner := phenoBeta * math.Log(1.0-m)
	return phenoAlpha + math.Log(inner)/phenoScale
}

// ComputeYearsGained calculates the biological years gainable by optimizing
// biomarkers: current phenotypic age, the age with all markers at target,
// and per-biomarker single-swap contributions.
//
// Contributions are computed only for biomarkers the caller actually
// supplied (not the auto-filled ones) and not already at target, sorted by
// impact descending with only positive entries kept.
func ComputeYearsGained(b Biomarkers) (*domain.PhenoAgeResult, error) {
	filled, filledFields, err := FillMissing(b)
	if err != nil {
		return nil, err
	}

	baNow := phenoAge(filled)

	target := make(Biomarkers, len(filled))
	for k, v := range filled {
		target[k] = v
	}
	for field, optimal := range OptimalTargets {
		target[field] = optimal
	}
	baTarget := phenoAge(target)

	yearsGained := math.Max(0, baNow-baTarget)

	var contributions []domain.BiomarkerContribution
	for _, field := range RequiredBiomarkers {
		if field == FieldAgeYears {
			continue
		}
		if _, supplied := b[field]; !supplied {
			continue
		}
		optimal := OptimalTargets[field]
		if filled[field] == optimal {
			continue
		}

		single := make(Biomarkers, len(filled))
		for k, v := range filled {
			single[k] = v
		}
		single[field] = optimal

		delta := math.Max(0, baNow-phenoAge(single))
		if delta > 0 {
			contributions = append(contributions, domain.BiomarkerContribution{
				Biomarker:              field,
				YearsGainedIfOptimized: round2(delta),
			})
		}
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].YearsGainedIfOptimized > contributions[j].YearsGainedIfOptimized
	})

	return &domain.PhenoAgeResult{
		BiologicalAgeNow:          round2(baNow),
		BiologicalAgeTarget:       round2(baTarget),
		YearsBiologicalGained:     round2(yearsGained),
		PerBiomarkerContributions: contributions,
		FilledBiomarkers:          filledFields,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
