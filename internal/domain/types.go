// Package domain contains the core entities and types for biomarker-based
// longevity scoring: evidence studies, measurements, per-biomarker impacts,
// and the aggregate score reports derived from them.
//
// The survival math follows an exponential-hazard approximation over pooled
// cohort data; the biological-age model is the Phenotypic Age (PhenoAge)
// formula of Levine et al. (2018), Aging 10(4):573-591.
package domain

// EffectDirection tells whether a study's exposure group is protective or
// harmful relative to its comparison group.
type EffectDirection string

const (
	PROTECTIVE EffectDirection = "protective"
	HARMFUL    EffectDirection = "harmful"
)

// OptimalValueType tags how a study expresses its optimal biomarker value.
type OptimalValueType string

const (
	OPTIMAL_RANGE          OptimalValueType = "range"
	OPTIMAL_THRESHOLD      OptimalValueType = "threshold"
	OPTIMAL_DIRECTION_ONLY OptimalValueType = "direction_only"
	OPTIMAL_PERCENTILE     OptimalValueType = "percentile"
	OPTIMAL_UNPARSEABLE    OptimalValueType = "unparseable"
)

// ThresholdDirection indicates which side of a threshold is optimal.
type ThresholdDirection string

const (
	HIGHER_IS_BETTER ThresholdDirection = "higher_is_better"
	LOWER_IS_BETTER  ThresholdDirection = "lower_is_better"
)

// MeasurementSource identifies where a biomarker measurement came from.
type MeasurementSource string

const (
	SOURCE_BLOOD_TEST  MeasurementSource = "blood_test"
	SOURCE_WEARABLE    MeasurementSource = "wearable"
	SOURCE_LAB_REPORT  MeasurementSource = "lab_report"
	SOURCE_BODY_SCAN   MeasurementSource = "body_scan"
	SOURCE_MEASUREMENT MeasurementSource = "measurement"
)

// ScoreLevel is the gamified tier label for an overall longevity score.
type ScoreLevel string

const (
	LEGENDARY ScoreLevel = "LEGENDARY"
	DIAMOND   ScoreLevel = "DIAMOND"
	GOLD      ScoreLevel = "GOLD"
	SILVER    ScoreLevel = "SILVER"
	BRONZE    ScoreLevel = "BRONZE"
	ROOKIE    ScoreLevel = "ROOKIE"
)

// ScoreLevelFor maps an overall score to its tier using fixed cutoffs.
func ScoreLevelFor(score int) ScoreLevel {
	switch {
	case score >= 90:
		return LEGENDARY
	case score >= 80:
		return DIAMOND
	case score >= 70:
		return GOLD
	case score >= 60:
		return SILVER
	case score >= 50:
		return BRONZE
	default:
		return ROOKIE
	}
}

// LetterGrade maps a deterministic overall score to a letter grade.
func LetterGrade(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "A-"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "C+"
	case score >= 65:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// ScoreInterpretation returns the human-readable reading of an overall score.
func ScoreInterpretation(score float64) string {
	switch {
	case score >= 90:
		return "Exceptional - You're in the top tier for health optimization"
	case score >= 80:
		return "Very Good - Most markers are in optimal ranges"
	case score >= 70:
		return "Good - Generally healthy with room for improvement"
	case score >= 60:
		return "Fair - Several markers could be optimized"
	default:
		return "Needs Attention - Multiple markers require intervention"
	}
}
