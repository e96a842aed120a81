package scoring

import (
	"math"

	"github.com/longevity-score-server/internal/domain"
)

const (
	// DefaultFollowUpYears stands in when a study omits its follow-up.
	DefaultFollowUpYears = 10.0

	// TargetLifespan is the horizon used when projecting remaining years.
	TargetLifespan = 85

	// MaxGainYears caps the benefit a single biomarker may claim.
	MaxGainYears = 10.0

	// Annual mortality caps. Rates above these indicate a numerically
	// extreme or confounded study, not a plausible population.
	maxOptimalAnnualMortality = 0.10
	maxUserAnnualMortality    = 0.20
)

// EstimateSurvival derives comparative follow-up survival proportions for
// the optimal and user groups from a study's pooled cohort statistics.
//
// The baseline annual mortality is back-derived from the pooled cohort's
// observed survival under an exponential model, then split multiplicatively
// by the hazard ratio: for a protective effect the optimal group gets the
// reduced rate, for a harmful one the user group gets the increased rate.
// This treats the pooled cohort as one arm of the comparison — an inherited
// modeling simplification, kept as-is.
//
// Returns (nil, nil, followUp) when the study lacks the population figures
// or its survival is outside the valid log domain.
func EstimateSurvival(study *domain.StudyRecord) (survivalOptimal, survivalUser *float64, followUpYears float64) {
	followUpYears = DefaultFollowUpYears
	pop := study.Population
	if pop != nil && present(pop.FollowUpYears) {
		followUpYears = *pop.FollowUpYears
	}

	if !hasCompletePopulation(study) {
		return nil, nil, followUpYears
	}

	nSubjects := *pop.NSubjects
	nDeaths := *pop.NDeaths

	overallSurvival := (nSubjects - nDeaths) / nSubjects
	if overallSurvival <= 0 || overallSurvival > 1 {
		// Everyone died (or bad data): no baseline hazard can be derived.
		return nil, nil, followUpYears
	}

	baselineAnnualMortality := -math.Log(overallSurvival) / followUpYears

	var optimalAnnualMortality, userAnnualMortality float64
	if study.EffectDirection == domain.PROTECTIVE {
		optimalAnnualMortality = baselineAnnualMortality * study.HazardRatio
		userAnnualMortality = baselineAnnualMortality
	} else {
		optimalAnnualMortality = baselineAnnualMortality
		userAnnualMortality = baselineAnnualMortality * study.HazardRatio
	}

	so := math.Exp(-optimalAnnualMortality * followUpYears)
	su := math.Exp(-userAnnualMortality * followUpYears)
	return &so, &su, followUpYears
}

// YearsGained estimates the years a user could gain by moving from the user
// group's survival to the optimal group's, projected to the target lifespan.
//
// Each survival proportion is annualized, capped (10% optimal / 20% user),
// and converted to a finite-horizon expected-years-lived figure via the
// geometric-series expectation (1 - (1-m)^n) / m. Degenerate rates (0 or
// >= 1) contribute zero expected years — a documented policy, not a careful
// limit. The result is clamped to [0, MaxGainYears].
func YearsGained(survivalOptimal, survivalUser *float64, followUpYears float64, userAge int) float64 {
	if survivalOptimal == nil || survivalUser == nil || followUpYears <= 0 {
		return 0
	}

	annualMortalityOptimal := 1 - math.Pow(*survivalOptimal, 1/followUpYears)
	annualMortalityUser := 1 - math.Pow(*survivalUser, 1/followUpYears)

	annualMortalityOptimal = math.Min(annualMortalityOptimal, maxOptimalAnnualMortality)
	annualMortalityUser = math.Min(annualMortalityUser, maxUserAnnualMortality)

	remainingYears := float64(TargetLifespan - userAge)

	gain := expectedYearsLived(annualMortalityOptimal, remainingYears) -
		expectedYearsLived(annualMortalityUser, remainingYears)

	return math.Min(math.Max(0, gain), MaxGainYears)
}

func expectedYearsLived(annualMortality, horizonYears float64) float64 {
	if annualMortality <= 0 || annualMortality >= 1 {
		return 0
	}
	return (1 - math.Pow(1-annualMortality, horizonYears)) / annualMortality
}
