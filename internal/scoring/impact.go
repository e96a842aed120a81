package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
)

// assumedModerateScore is used when a study's optimal value cannot place
// the user's measurement (direction-only, percentile, or missing bounds).
const assumedModerateScore = 80

// Engine scores individual measurements against the evidence catalog and
// aggregates the resulting impacts. It holds only immutable state and a
// logger; concurrent calls are safe.
type Engine struct {
	catalog *catalog.Catalog
	log     *logrus.Logger
}

// NewEngine creates a scoring engine over a loaded catalog.
func NewEngine(cat *catalog.Catalog, logger *logrus.Logger) *Engine {
	return &Engine{catalog: cat, log: logger}
}

// BiomarkerImpact computes the longevity impact of one measurement.
// Returns nil when the biomarker cannot be scored — unknown name or no
// usable study — so a single bad measurement never fails a batch; the
// caller counts the skip and moves on.
func (e *Engine) BiomarkerImpact(m domain.BiomarkerMeasurement, userAge int) *domain.LongevityImpact {
	dbName, ok := e.catalog.NormalizeName(m.Name)
	if !ok {
		e.log.WithField("biomarker", m.Name).Warn("Biomarker not found in evidence database")
		return nil
	}

	evidence, _ := e.catalog.Lookup(dbName)
	study := SelectBestStudy(evidence)
	if study == nil {
		e.log.WithField("biomarker", m.Name).Warn("No realistic study found for biomarker")
		return nil
	}

	survivalOptimal, survivalUser, followUpYears := EstimateSurvival(study)
	healthScore, isOptimal := healthScoreFromStudy(m.Value, study.OptimalValue)

	var gainYears float64
	if deref(survivalOptimal) > 0 && deref(survivalUser) > 0 {
		gainYears = YearsGained(survivalOptimal, survivalUser, followUpYears, userAge)
	}

	return &domain.LongevityImpact{
		BiomarkerName:            dbName,
		UserValue:                m.Value,
		OptimalRange:             formatOptimalRange(study.OptimalValue),
		IsOptimal:                isOptimal,
		HazardRatio:              study.HazardRatio,
		StudySurvivalRateOptimal: deref(survivalOptimal),
		StudySurvivalRateUser:    deref(survivalUser),
		StudyFollowUpYears:       followUpYears,
		HealthScore:              healthScore,
		PotentialGainYears:       gainYears,
		Category:                 evidence.Category,
	}
}

// healthScoreFromStudy scores a value against a study's optimal definition.
// Range: lose 40 points per range-width of distance, capped at two widths.
// Threshold: lose 80 points at 100% relative distance. Anything the study
// cannot place scores an assumed moderate 80.
func healthScoreFromStudy(userValue float64, opt *domain.OptimalValue) (int, bool) {
	if opt == nil {
		return assumedModerateScore, false
	}

	switch opt.Type {
	case domain.OPTIMAL_RANGE:
		if opt.RangeLow == nil || opt.RangeHigh == nil {
			return assumedModerateScore, false
		}
		low, high := *opt.RangeLow, *opt.RangeHigh
		if low <= userValue && userValue <= high {
			return 100, true
		}
		width := high - low
		if width <= 0 {
			return assumedModerateScore, false
		}
		distance := low - userValue
		if userValue > high {
			distance = userValue - high
		}
		normalized := math.Min(distance/width, 2.0)
		return int(math.Max(0, 100-normalized*40)), false

	case domain.OPTIMAL_THRESHOLD:
		if opt.Value == nil || *opt.Value == 0 {
			return assumedModerateScore, false
		}
		threshold := *opt.Value
		var distancePct float64
		if opt.Direction == domain.LOWER_IS_BETTER {
			if userValue <= threshold {
				return 100, true
			}
			distancePct = (userValue - threshold) / threshold
		} else {
			if userValue >= threshold {
				return 100, true
			}
			distancePct = (threshold - userValue) / threshold
		}
		return int(math.Max(0, 100-distancePct*80)), false

	default:
		// direction_only / percentile / unparseable: the study cannot
		// place the user's value.
		return assumedModerateScore, false
	}
}

// formatOptimalRange renders a study's optimal value for display.
func formatOptimalRange(opt *domain.OptimalValue) string {
	if opt == nil {
		return string(domain.OPTIMAL_UNPARSEABLE)
	}
	switch opt.Type {
	case domain.OPTIMAL_RANGE:
		if opt.RangeLow == nil || opt.RangeHigh == nil {
			return string(opt.Type)
		}
		return strings.TrimSpace(fmt.Sprintf("%g-%g %s", *opt.RangeLow, *opt.RangeHigh, opt.Unit))
	case domain.OPTIMAL_THRESHOLD:
		if opt.Value == nil {
			return string(opt.Type)
		}
		symbol := ">"
		if opt.Direction == domain.LOWER_IS_BETTER {
			symbol = "<"
		}
		return strings.TrimSpace(fmt.Sprintf("%s%g %s", symbol, *opt.Value, opt.Unit))
	default:
		return string(opt.Type)
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
