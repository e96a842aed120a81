package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  ScoreLevel
	}{
		{100, LEGENDARY},
		{90, LEGENDARY},
		{89, DIAMOND},
		{80, DIAMOND},
		{79, GOLD},
		{70, GOLD},
		{69, SILVER},
		{60, SILVER},
		{59, BRONZE},
		{50, BRONZE},
		{49, ROOKIE},
		{0, ROOKIE},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreLevelFor(tt.score), "score %d", tt.score)
	}
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{98.5, "A+"},
		{95, "A+"},
		{94.9, "A"},
		{90, "A"},
		{85, "A-"},
		{80, "B+"},
		{75, "B"},
		{70, "C+"},
		{65, "C"},
		{60, "D"},
		{59.9, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.score), "score %v", tt.score)
	}
}

func TestScoreInterpretation(t *testing.T) {
	assert.Contains(t, ScoreInterpretation(92), "Exceptional")
	assert.Contains(t, ScoreInterpretation(83), "Very Good")
	assert.Contains(t, ScoreInterpretation(74), "Good")
	assert.Contains(t, ScoreInterpretation(61), "Fair")
	assert.Contains(t, ScoreInterpretation(40), "Needs Attention")
}
