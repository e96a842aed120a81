package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/scoring"
)

func TestMatchesField(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		aliases []string
		want    bool
	}{
		{"exact", "albumin", []string{"albumin", "serum albumin"}, true},
		{"case insensitive", "Serum Albumin", []string{"albumin", "serum albumin"}, true},
		{"single word must be whole word", "alpha-fetoprotein", []string{"alp", "alkaline phosphatase"}, false},
		{"whole word inside longer name", "ALP (total)", []string{"alp", "alkaline phosphatase"}, true},
		{"multi word matches by substring", "alkaline phosphatase, serum", []string{"alp", "alkaline phosphatase"}, true},
		{"hyphenated alias matches by substring", "hs-CRP (high sensitivity)", []string{"crp", "hs-crp"}, true},
		{"unrelated", "ferritin", []string{"crp", "c-reactive protein"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesField(tt.input, tt.aliases))
		})
	}
}

func TestBuildPhenoAgeInput(t *testing.T) {
	measurements := []domain.BiomarkerMeasurement{
		{Name: "Fasting glucose", Value: 105},
		{Name: "hs-CRP", Value: 2.4},
		{Name: "Mean corpuscular volume", Value: 91},
		{Name: "ferritin", Value: 80},
	}

	input := buildPhenoAgeInput(measurements, 52)

	assert.InDelta(t, 52, input[scoring.FieldAgeYears], 1e-9)
	assert.InDelta(t, 105, input[scoring.FieldGlucose], 1e-9)
	assert.InDelta(t, 2.4, input[scoring.FieldCRP], 1e-9)
	assert.InDelta(t, 91, input[scoring.FieldMCV], 1e-9)

	// Unmatched model fields stay absent so the fill policy can take over.
	_, ok := input[scoring.FieldAlbumin]
	assert.False(t, ok)

	// ferritin is not a model input.
	assert.Len(t, input, 4)
}

func TestBuildPhenoAgeInput_FirstMatchWins(t *testing.T) {
	measurements := []domain.BiomarkerMeasurement{
		{Name: "glucose", Value: 99},
		{Name: "fasting glucose", Value: 88},
	}

	input := buildPhenoAgeInput(measurements, 40)
	assert.InDelta(t, 99, input[scoring.FieldGlucose], 1e-9)
}

func TestBuildPhenoAgeInput_AgeAlwaysPresent(t *testing.T) {
	input := buildPhenoAgeInput(nil, 33)
	assert.Len(t, input, 1)
	assert.InDelta(t, 33, input[scoring.FieldAgeYears], 1e-9)
}
