package scoring

import (
	"math"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
)

// OverallScore aggregates per-biomarker impacts into the overall longevity
// report.
//
// The overall score is the effect-magnitude-weighted mean of health scores
// (weight = the biomarker's catalog-level max effect magnitude). Bonus
// years are de-duplicated by correlation group: within each group only the
// maximum gain counts, because correlated markers (LDL and total
// cholesterol, say) describe the same underlying risk. The top opportunity
// is the non-optimal impact with the largest gain; ties keep the first
// occurrence in input order.
func (e *Engine) OverallScore(impacts []domain.LongevityImpact, userAge int) *domain.OverallScoreReport {
	if len(impacts) == 0 {
		return &domain.OverallScoreReport{
			OverallScore: 100,
			ScoreLevel:   domain.LEGENDARY,
			UserAge:      userAge,
		}
	}

	var totalWeight, weightedScore float64
	for _, impact := range impacts {
		weight := 0.0
		if evidence, ok := e.catalog.Lookup(impact.BiomarkerName); ok {
			weight = evidence.MaxEffectMagnitude
		}
		weightedScore += float64(impact.HealthScore) * weight
		totalWeight += weight
	}

	overallScore := 100
	if totalWeight > 0 {
		overallScore = int(weightedScore / totalWeight)
	}

	var nonOptimal []domain.LongevityImpact
	optimizedCount := 0
	for _, impact := range impacts {
		if impact.IsOptimal {
			optimizedCount++
		} else {
			nonOptimal = append(nonOptimal, impact)
		}
	}

	groupedBonuses := make(map[string]float64)
	for _, impact := range nonOptimal {
		group := catalog.CorrelationGroup(impact.BiomarkerName)
		if impact.PotentialGainYears > groupedBonuses[group] {
			groupedBonuses[group] = impact.PotentialGainYears
		}
	}
	var totalBonusYears float64
	for _, years := range groupedBonuses {
		totalBonusYears += years
	}

	var top *domain.TopOpportunity
	if len(nonOptimal) > 0 {
		best := nonOptimal[0]
		for _, impact := range nonOptimal[1:] {
			if impact.PotentialGainYears > best.PotentialGainYears {
				best = impact
			}
		}
		top = &domain.TopOpportunity{
			Biomarker:    best.BiomarkerName,
			CurrentScore: best.HealthScore,
			BonusYears:   round1(best.PotentialGainYears),
			YourValue:    best.UserValue,
			Target:       best.OptimalRange,
		}
	}

	return &domain.OverallScoreReport{
		OverallScore:       overallScore,
		ScoreLevel:         domain.ScoreLevelFor(overallScore),
		TotalBonusYears:    round1(totalBonusYears),
		TopOpportunity:     top,
		OptimizedCount:     optimizedCount,
		OpportunitiesCount: len(nonOptimal),
		UserAge:            userAge,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
