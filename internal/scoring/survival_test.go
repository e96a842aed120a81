package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevity-score-server/internal/domain"
)

func TestEstimateSurvival_Harmful(t *testing.T) {
	study := &domain.StudyRecord{
		BiomarkerName:   "Fasting glucose",
		HazardRatio:     1.5,
		EffectDirection: domain.HARMFUL,
		Population: &domain.StudyPopulation{
			NSubjects:     f64(10000),
			NDeaths:       f64(800),
			FollowUpYears: f64(10),
		},
	}

	so, su, followUp := EstimateSurvival(study)
	require.NotNil(t, so)
	require.NotNil(t, su)
	assert.InDelta(t, 10.0, followUp, 1e-9)

	// Baseline survival 0.92; the optimal group keeps the baseline rate
	// while the user group carries rate*HR.
	baseline := -math.Log(0.92) / 10
	assert.InDelta(t, math.Exp(-baseline*10), *so, 1e-9)
	assert.InDelta(t, math.Exp(-baseline*1.5*10), *su, 1e-9)
	assert.Greater(t, *so, *su)
}

func TestEstimateSurvival_Protective(t *testing.T) {
	study := &domain.StudyRecord{
		BiomarkerName:   "Grip strength",
		HazardRatio:     0.6,
		EffectDirection: domain.PROTECTIVE,
		Population: &domain.StudyPopulation{
			NSubjects:     f64(10000),
			NDeaths:       f64(800),
			FollowUpYears: f64(10),
		},
	}

	so, su, _ := EstimateSurvival(study)
	require.NotNil(t, so)
	require.NotNil(t, su)

	// Protective effect: the optimal group gets the reduced rate.
	assert.Greater(t, *so, *su)
}

func TestEstimateSurvival_MissingPopulation(t *testing.T) {
	tests := []struct {
		name  string
		study *domain.StudyRecord
	}{
		{
			name:  "nil population",
			study: &domain.StudyRecord{HazardRatio: 1.5},
		},
		{
			name: "zero subjects",
			study: &domain.StudyRecord{HazardRatio: 1.5, Population: &domain.StudyPopulation{
				NSubjects: f64(0), NDeaths: f64(10), FollowUpYears: f64(10),
			}},
		},
		{
			name: "missing deaths",
			study: &domain.StudyRecord{HazardRatio: 1.5, Population: &domain.StudyPopulation{
				NSubjects: f64(1000), FollowUpYears: f64(10),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			so, su, followUp := EstimateSurvival(tt.study)
			assert.Nil(t, so)
			assert.Nil(t, su)
			assert.Greater(t, followUp, 0.0)
		})
	}
}

func TestEstimateSurvival_EveryoneDied(t *testing.T) {
	study := &domain.StudyRecord{
		HazardRatio: 1.5,
		Population: &domain.StudyPopulation{
			NSubjects: f64(100), NDeaths: f64(100), FollowUpYears: f64(10),
		},
	}

	so, su, _ := EstimateSurvival(study)
	assert.Nil(t, so)
	assert.Nil(t, su)
}

func TestEstimateSurvival_DefaultFollowUp(t *testing.T) {
	study := &domain.StudyRecord{HazardRatio: 1.2}
	_, _, followUp := EstimateSurvival(study)
	assert.InDelta(t, DefaultFollowUpYears, followUp, 1e-9)
}

func TestYearsGained_NilInputs(t *testing.T) {
	assert.Zero(t, YearsGained(nil, f64(0.9), 10, 40))
	assert.Zero(t, YearsGained(f64(0.95), nil, 10, 40))
	assert.Zero(t, YearsGained(f64(0.95), f64(0.9), 0, 40))
}

func TestYearsGained_Clamped(t *testing.T) {
	// An absurd survival split must still produce a gain inside [0, 10].
	gain := YearsGained(f64(0.999), f64(0.05), 10, 30)
	assert.GreaterOrEqual(t, gain, 0.0)
	assert.LessOrEqual(t, gain, MaxGainYears)

	// Inverted split (user better than optimal) clamps to zero.
	assert.Zero(t, YearsGained(f64(0.5), f64(0.99), 10, 30))
}

func TestYearsGained_PositiveForWorseUserSurvival(t *testing.T) {
	gain := YearsGained(f64(0.92), f64(0.88), 10, 40)
	assert.Greater(t, gain, 0.0)
	assert.LessOrEqual(t, gain, MaxGainYears)
}

func TestYearsGained_PropertySweep(t *testing.T) {
	// Clamp property over a grid of survival splits and ages.
	survivals := []float64{0.01, 0.2, 0.5, 0.8, 0.95, 0.999}
	ages := []int{20, 40, 60, 84, 90}

	for _, so := range survivals {
		for _, su := range survivals {
			for _, age := range ages {
				gain := YearsGained(f64(so), f64(su), 10, age)
				assert.GreaterOrEqual(t, gain, 0.0)
				assert.LessOrEqual(t, gain, MaxGainYears)
			}
		}
	}
}
