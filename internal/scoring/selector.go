// Package scoring implements the quantitative health-scoring core: study
// selection over noisy observational evidence, exponential-hazard survival
// estimation, deterministic range scoring, the Levine PhenoAge model, and
// correlation-aware score aggregation. Everything here is pure computation
// over immutable catalog data; concurrent calls are safe.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/longevity-score-server/internal/domain"
)

// Reasonable hazard ratio bounds. Values outside this band usually indicate
// confounding or extreme populations rather than a real effect.
const (
	minReasonableHR = 0.3
	maxReasonableHR = 3.0
)

// SelectBestStudy picks the single "best realistic" study for a biomarker.
// Each stage filters the survivors of the previous one:
//
//  1. drop composite/multi-marker studies (name contains ",", "+" or " and ")
//  2. keep hazard ratios in [0.3, 3.0]; if none, keep the single least
//     extreme study by |ln(HR)|
//  3. keep studies with complete population data; if none, fall back to the
//     catalog's precomputed best study
//  4. prefer range/threshold optimal values over direction-only ones
//  5. return the median-indexed survivor after sorting by effect magnitude
//     ascending — deliberately not the maximum, which is the study most
//     likely to be confounded
//
// This is a confound-reduction policy over heterogeneous observational
// evidence, not statistical inference. Returns nil when the biomarker has
// no usable study at all.
func SelectBestStudy(evidence *domain.BiomarkerEvidence) *domain.StudyRecord {
	if evidence == nil {
		return nil
	}

	singles := make([]*domain.StudyRecord, 0, len(evidence.AllStudies))
	for i := range evidence.AllStudies {
		study := &evidence.AllStudies[i]
		if !isCompositeName(study.BiomarkerName) {
			singles = append(singles, study)
		}
	}
	if len(singles) == 0 {
		return evidence.BestStudy
	}

	reasonable := make([]*domain.StudyRecord, 0, len(singles))
	for _, study := range singles {
		if study.HazardRatio >= minReasonableHR && study.HazardRatio <= maxReasonableHR {
			reasonable = append(reasonable, study)
		}
	}
	if len(reasonable) == 0 {
		reasonable = []*domain.StudyRecord{leastExtreme(singles)}
	}

	valid := make([]*domain.StudyRecord, 0, len(reasonable))
	for _, study := range reasonable {
		if hasCompletePopulation(study) {
			valid = append(valid, study)
		}
	}
	if len(valid) == 0 {
		return evidence.BestStudy
	}

	pool := make([]*domain.StudyRecord, 0, len(valid))
	for _, study := range valid {
		if study.OptimalValue != nil &&
			(study.OptimalValue.Type == domain.OPTIMAL_RANGE || study.OptimalValue.Type == domain.OPTIMAL_THRESHOLD) {
			pool = append(pool, study)
		}
	}
	if len(pool) == 0 {
		pool = valid
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].EffectMagnitude < pool[j].EffectMagnitude
	})

	return pool[len(pool)/2]
}

// isCompositeName reports whether a study name covers multiple combined
// biomarkers, which confounds single-marker attribution.
func isCompositeName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(name, ",") ||
		strings.Contains(name, "+") ||
		strings.Contains(lower, " and ")
}

// leastExtreme returns the study with the smallest |ln(HR)|.
func leastExtreme(studies []*domain.StudyRecord) *domain.StudyRecord {
	best := studies[0]
	bestMag := math.Abs(math.Log(best.HazardRatio))
	for _, study := range studies[1:] {
		mag := math.Abs(math.Log(study.HazardRatio))
		if mag < bestMag {
			best = study
			bestMag = mag
		}
	}
	return best
}

// hasCompletePopulation reports whether the study carries the subjects,
// deaths and follow-up figures the survival model needs. Zero counts as
// missing.
func hasCompletePopulation(study *domain.StudyRecord) bool {
	pop := study.Population
	if pop == nil {
		return false
	}
	return present(pop.NSubjects) && present(pop.NDeaths) && present(pop.FollowUpYears)
}

func present(v *float64) bool {
	return v != nil && *v != 0
}
