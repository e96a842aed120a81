package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevity-score-server/internal/domain"
)

func f64(v float64) *float64 { return &v }

func completePopulation() *domain.StudyPopulation {
	return &domain.StudyPopulation{
		NSubjects:     f64(10000),
		NDeaths:       f64(800),
		FollowUpYears: f64(10),
	}
}

func rangeOptimal(low, high float64) *domain.OptimalValue {
	return &domain.OptimalValue{
		Type:      domain.OPTIMAL_RANGE,
		RangeLow:  f64(low),
		RangeHigh: f64(high),
	}
}

func TestSelectBestStudy_NilEvidence(t *testing.T) {
	assert.Nil(t, SelectBestStudy(nil))
}

func TestSelectBestStudy_ExcludesCompositeNames(t *testing.T) {
	evidence := &domain.BiomarkerEvidence{
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "LDL, total cholesterol", HazardRatio: 1.2, EffectMagnitude: 1.2, Population: completePopulation(), OptimalValue: rangeOptimal(70, 100)},
			{BiomarkerName: "LDL + ApoB", HazardRatio: 1.3, EffectMagnitude: 1.3, Population: completePopulation(), OptimalValue: rangeOptimal(70, 100)},
			{BiomarkerName: "LDL and HDL", HazardRatio: 1.4, EffectMagnitude: 1.4, Population: completePopulation(), OptimalValue: rangeOptimal(70, 100)},
			{BiomarkerName: "LDL cholesterol", HazardRatio: 1.25, EffectMagnitude: 1.25, Population: completePopulation(), OptimalValue: rangeOptimal(70, 100)},
		},
	}

	study := SelectBestStudy(evidence)
	require.NotNil(t, study)
	assert.Equal(t, "LDL cholesterol", study.BiomarkerName)
}

func TestSelectBestStudy_AllComposite_FallsBackToBestStudy(t *testing.T) {
	best := &domain.StudyRecord{BiomarkerName: "LDL, HDL", HazardRatio: 1.6, EffectMagnitude: 1.6}
	evidence := &domain.BiomarkerEvidence{
		BestStudy: best,
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "LDL, HDL", HazardRatio: 1.6, EffectMagnitude: 1.6},
		},
	}

	assert.Same(t, best, SelectBestStudy(evidence))
}

func TestSelectBestStudy_ExtremeHRFallsBackToLeastExtreme(t *testing.T) {
	// All hazard ratios outside [0.3, 3.0]: the least extreme by |ln(HR)|
	// survives instead of the reasonable-range filter.
	evidence := &domain.BiomarkerEvidence{
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "Body fat percentage", HazardRatio: 4.5, EffectMagnitude: 4.5, Population: completePopulation(), OptimalValue: rangeOptimal(15, 24)},
			{BiomarkerName: "Body fat percentage", HazardRatio: 3.6, EffectMagnitude: 3.6, Population: completePopulation(), OptimalValue: rangeOptimal(18, 28)},
		},
	}

	study := SelectBestStudy(evidence)
	require.NotNil(t, study)
	assert.InDelta(t, 3.6, study.HazardRatio, 1e-9)
}

func TestSelectBestStudy_IncompletePopulationFallsBackToBestStudy(t *testing.T) {
	best := &domain.StudyRecord{BiomarkerName: "Grip strength", HazardRatio: 0.6, EffectMagnitude: 1.67}
	evidence := &domain.BiomarkerEvidence{
		BestStudy: best,
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "Grip strength", HazardRatio: 0.7, EffectMagnitude: 1.43, Population: nil},
			{BiomarkerName: "Grip strength", HazardRatio: 0.8, EffectMagnitude: 1.25, Population: &domain.StudyPopulation{
				NSubjects: f64(5000), NDeaths: f64(0), FollowUpYears: f64(8),
			}},
		},
	}

	// Zero deaths counts as missing population data.
	assert.Same(t, best, SelectBestStudy(evidence))
}

func TestSelectBestStudy_PrefersPlaceableOptimalValues(t *testing.T) {
	evidence := &domain.BiomarkerEvidence{
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "Vitamin D", HazardRatio: 0.6, EffectMagnitude: 1.67, Population: completePopulation(),
				OptimalValue: &domain.OptimalValue{Type: domain.OPTIMAL_DIRECTION_ONLY}},
			{BiomarkerName: "Vitamin D", HazardRatio: 0.7, EffectMagnitude: 1.43, Population: completePopulation(),
				OptimalValue: rangeOptimal(40, 60)},
		},
	}

	study := SelectBestStudy(evidence)
	require.NotNil(t, study)
	assert.Equal(t, domain.OPTIMAL_RANGE, study.OptimalValue.Type)
}

func TestSelectBestStudy_ReturnsMedianByEffectMagnitude(t *testing.T) {
	evidence := &domain.BiomarkerEvidence{
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "hs-CRP", HazardRatio: 1.9, EffectMagnitude: 1.9, Population: completePopulation(), OptimalValue: rangeOptimal(0, 1)},
			{BiomarkerName: "hs-CRP", HazardRatio: 1.2, EffectMagnitude: 1.2, Population: completePopulation(), OptimalValue: rangeOptimal(0, 1)},
			{BiomarkerName: "hs-CRP", HazardRatio: 1.5, EffectMagnitude: 1.5, Population: completePopulation(), OptimalValue: rangeOptimal(0, 1)},
		},
	}

	study := SelectBestStudy(evidence)
	require.NotNil(t, study)
	// Sorted magnitudes: 1.2, 1.5, 1.9. Median index 1.
	assert.InDelta(t, 1.5, study.EffectMagnitude, 1e-9)
}

func TestSelectBestStudy_EvenCountTakesUpperMedian(t *testing.T) {
	evidence := &domain.BiomarkerEvidence{
		AllStudies: []domain.StudyRecord{
			{BiomarkerName: "hs-CRP", HazardRatio: 1.2, EffectMagnitude: 1.2, Population: completePopulation(), OptimalValue: rangeOptimal(0, 1)},
			{BiomarkerName: "hs-CRP", HazardRatio: 1.8, EffectMagnitude: 1.8, Population: completePopulation(), OptimalValue: rangeOptimal(0, 1)},
		},
	}

	study := SelectBestStudy(evidence)
	require.NotNil(t, study)
	assert.InDelta(t, 1.8, study.EffectMagnitude, 1e-9)
}

func TestIsCompositeName(t *testing.T) {
	assert.True(t, isCompositeName("LDL, HDL"))
	assert.True(t, isCompositeName("LDL + ApoB"))
	assert.True(t, isCompositeName("glucose AND insulin"))
	assert.False(t, isCompositeName("Triglycerides"))
	assert.False(t, isCompositeName("android fat"))
}
