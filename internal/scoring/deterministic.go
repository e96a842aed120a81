package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
)

// ProblematicThreshold is the fixed triage cutoff: markers scoring below it
// are flagged for intervention.
const ProblematicThreshold = 80.0

// neutralScore is returned for biomarkers absent from the range table.
const neutralScore = 50.0

// ScoreBiomarker maps a raw value to a 0-100 score against a static range.
//
// The curve has three zones: 100 inside the optimal band, a linear 100→70
// slide across the acceptable band, and a steeper penalty beyond it that
// starts at 30. The discontinuity at the acceptable boundary is intentional:
// it signals "has left safe territory" and feeds the fixed triage cutoff,
// so the exact formula matters, not just monotonicity.
func ScoreBiomarker(value float64, r domain.BiomarkerRange) float64 {
	if r.OptimalLow <= value && value <= r.OptimalHigh {
		return 100
	}

	if value < r.OptimalLow {
		if value >= r.AcceptableLow {
			rangeSize := r.OptimalLow - r.AcceptableLow
			distance := r.OptimalLow - value
			return math.Max(100-(distance/rangeSize)*30, 70)
		}
		return belowThirty(r.AcceptableLow-value, r.AcceptableLow)
	}

	if value <= r.AcceptableHigh {
		rangeSize := r.AcceptableHigh - r.OptimalHigh
		distance := value - r.OptimalHigh
		return math.Max(100-(distance/rangeSize)*30, 70)
	}
	return belowThirty(value-r.AcceptableHigh, r.AcceptableHigh)
}

// belowThirty applies the outside-acceptable penalty: up to 70 points off a
// base of 30, scaled by distance relative to the acceptable bound. A zero
// bound (e.g. CRP's lower bound) takes the full penalty instead of dividing
// by zero.
func belowThirty(distance, bound float64) float64 {
	penalty := 70.0
	if bound != 0 {
		penalty = math.Min(distance/bound*50, 70)
	}
	return math.Max(30-penalty, 0)
}

// AgeAdjustment returns the age-based score multiplier. Youth gets a slight
// bonus; healthy aging is not penalized beyond a small shift.
func AgeAdjustment(age int) float64 {
	switch {
	case age < 30:
		return 1.02
	case age < 50:
		return 1.0
	case age < 65:
		return 0.98
	default:
		return 0.97
	}
}

// DeterministicScorer scores raw biomarker values against the static range
// table, without any study data. It is the fast triage path.
type DeterministicScorer struct {
	ranges map[string]domain.BiomarkerRange
	log    *logrus.Logger
}

// NewDeterministicScorer creates a scorer over the static range table.
func NewDeterministicScorer(logger *logrus.Logger) *DeterministicScorer {
	return &DeterministicScorer{
		ranges: catalog.Ranges(),
		log:    logger,
	}
}

// Score returns the 0-100 score for one biomarker key and value.
// Unknown biomarkers score neutral.
func (s *DeterministicScorer) Score(value float64, biomarker string) float64 {
	r, ok := s.ranges[biomarker]
	if !ok {
		return neutralScore
	}
	return ScoreBiomarker(value, r)
}

// Aggregate computes the weighted overall score, letter grade, per-marker
// component scores and the problematic-marker triage list for a set of
// biomarker values keyed by range table key.
func (s *DeterministicScorer) Aggregate(values map[string]float64, age int, gender string) *domain.DeterministicReport {
	componentScores := make(map[string]domain.ComponentScore)
	var totalWeight, weightedScore float64

	for _, key := range sortedKeys(values) {
		r, ok := s.ranges[key]
		if !ok {
			continue
		}
		value := values[key]
		score := ScoreBiomarker(value, r)

		componentScores[key] = domain.ComponentScore{
			Value:        value,
			Score:        score,
			Unit:         r.Unit,
			OptimalRange: fmt.Sprintf("%g-%g", r.OptimalLow, r.OptimalHigh),
			Description:  r.Description,
		}

		weightedScore += score * r.Weight
		totalWeight += r.Weight
	}

	baseScore := neutralScore
	if totalWeight > 0 {
		baseScore = weightedScore / totalWeight
	}

	overallScore := math.Min(baseScore*AgeAdjustment(age), 100)
	overallScore = math.Round(overallScore*10) / 10

	return &domain.DeterministicReport{
		OverallScore:         overallScore,
		Grade:                domain.LetterGrade(overallScore),
		Interpretation:       domain.ScoreInterpretation(overallScore),
		ComponentScores:      componentScores,
		ProblematicMarkers:   s.ProblematicMarkers(values, ProblematicThreshold),
		Age:                  age,
		Gender:               gender,
		TotalMarkersAnalyzed: len(componentScores),
	}
}

// ProblematicMarkers returns the biomarkers scoring below threshold, sorted
// by priority (weight * severity) descending.
func (s *DeterministicScorer) ProblematicMarkers(values map[string]float64, threshold float64) []domain.ProblematicMarker {
	var problematic []domain.ProblematicMarker

	for _, key := range sortedKeys(values) {
		r, ok := s.ranges[key]
		if !ok {
			continue
		}
		value := values[key]
		score := ScoreBiomarker(value, r)
		if score < threshold {
			problematic = append(problematic, domain.ProblematicMarker{
				Biomarker: key,
				Value:     value,
				Score:     score,
				Priority:  r.Weight * (100 - score) / 100,
			})
		}
	}

	sort.SliceStable(problematic, func(i, j int) bool {
		return problematic[i].Priority > problematic[j].Priority
	})
	return problematic
}

func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
