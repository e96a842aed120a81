package service

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/history"
	"github.com/longevity-score-server/internal/scoring"
)

const serviceCatalogJSON = `{
  "metadata": {"total_biomarkers": 2, "source": "test fixture"},
  "biomarkers": {
    "LDL cholesterol": {
      "category": "lipids",
      "max_effect_magnitude": 1.38,
      "study_count": 1,
      "best_study": {
        "biomarker_name": "LDL cholesterol",
        "hazard_ratio": 1.38,
        "effect_magnitude": 1.38,
        "effect_direction": "harmful",
        "optimal_value": {"type": "threshold", "value": 100, "direction": "lower_is_better", "unit": "mg/dL"},
        "population": {"n_subjects": 28024, "n_deaths": 1204, "follow_up_years": 9.0}
      },
      "all_studies": [
        {
          "biomarker_name": "LDL cholesterol",
          "hazard_ratio": 1.38,
          "effect_magnitude": 1.38,
          "effect_direction": "harmful",
          "optimal_value": {"type": "threshold", "value": 100, "direction": "lower_is_better", "unit": "mg/dL"},
          "population": {"n_subjects": 28024, "n_deaths": 1204, "follow_up_years": 9.0}
        }
      ]
    },
    "Fasting glucose": {
      "category": "glucose_metabolism",
      "max_effect_magnitude": 1.52,
      "study_count": 1,
      "best_study": {
        "biomarker_name": "Fasting glucose",
        "hazard_ratio": 1.52,
        "effect_magnitude": 1.52,
        "effect_direction": "harmful",
        "optimal_value": {"type": "range", "range_low": 80, "range_high": 94, "unit": "mg/dL"},
        "population": {"n_subjects": 140120, "n_deaths": 11208, "follow_up_years": 13.3}
      },
      "all_studies": [
        {
          "biomarker_name": "Fasting glucose",
          "hazard_ratio": 1.52,
          "effect_magnitude": 1.52,
          "effect_direction": "harmful",
          "optimal_value": {"type": "range", "range_low": 80, "range_high": 94, "unit": "mg/dL"},
          "population": {"n_subjects": 140120, "n_deaths": 11208, "follow_up_years": 13.3}
        }
      ]
    }
  }
}`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, store history.Store, cache ReportCache) *ScoringService {
	t.Helper()
	cat, err := catalog.Parse([]byte(serviceCatalogJSON), testLogger())
	require.NoError(t, err)
	return NewScoringService(cat, store, cache, testLogger())
}

// captureStore records Save calls and satisfies the rest of the Store
// interface with no-ops.
type captureStore struct {
	saved []*history.Record
}

func (c *captureStore) Save(_ context.Context, record *history.Record) error {
	c.saved = append(c.saved, record)
	return nil
}
func (c *captureStore) Get(context.Context, string) (*history.Record, error)     { return nil, nil }
func (c *captureStore) List(context.Context, int, int) ([]*history.Record, error) { return nil, nil }
func (c *captureStore) Count(context.Context) (int64, error)                      { return int64(len(c.saved)), nil }
func (c *captureStore) Delete(context.Context, string) error                      { return nil }
func (c *captureStore) ExportJSON(context.Context, io.Writer) error               { return nil }
func (c *captureStore) ImportJSON(context.Context, io.Reader) (int, int, error)   { return 0, 0, nil }
func (c *captureStore) Close() error                                              { return nil }

// mapCache is an in-memory ReportCache for tests.
type mapCache struct {
	entries map[string]*domain.ScoreResponse
	gets    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*domain.ScoreResponse)}
}

func (c *mapCache) Get(_ context.Context, key string) (*domain.ScoreResponse, bool, error) {
	c.gets++
	resp, ok := c.entries[key]
	return resp, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, resp *domain.ScoreResponse) error {
	c.sets++
	c.entries[key] = resp
	return nil
}

func validScoreRequest() *domain.ScoreRequest {
	return &domain.ScoreRequest{
		UserAge:    45,
		UserGender: "male",
		Measurements: []domain.BiomarkerMeasurement{
			{Name: "LDL cholesterol", Value: 140, Unit: "mg/dL"},
			{Name: "Fasting glucose", Value: 105, Unit: "mg/dL"},
		},
	}
}

func TestScore_Validation(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       *domain.ScoreRequest
		wantField string
	}{
		{
			name:      "age zero",
			req:       &domain.ScoreRequest{UserAge: 0, Measurements: []domain.BiomarkerMeasurement{{Name: "LDL cholesterol", Value: 90}}},
			wantField: "user_age",
		},
		{
			name:      "age above cap",
			req:       &domain.ScoreRequest{UserAge: 131, Measurements: []domain.BiomarkerMeasurement{{Name: "LDL cholesterol", Value: 90}}},
			wantField: "user_age",
		},
		{
			name:      "no measurements",
			req:       &domain.ScoreRequest{UserAge: 45},
			wantField: "measurements",
		},
		{
			name:      "empty measurement name",
			req:       &domain.ScoreRequest{UserAge: 45, Measurements: []domain.BiomarkerMeasurement{{Name: "", Value: 1}}},
			wantField: "measurements[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Score(ctx, tt.req)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestScore_FullPipeline(t *testing.T) {
	store := &captureStore{}
	svc := newTestService(t, store, nil)

	req := validScoreRequest()
	req.Measurements = append(req.Measurements, domain.BiomarkerMeasurement{Name: "quantum flux", Value: 7})

	resp, err := svc.Score(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.ReportID)
	assert.False(t, resp.Timestamp.IsZero())

	// Unknown marker is reported, never silently dropped.
	assert.Equal(t, []string{"quantum flux"}, resp.SkippedMarkers)

	// Impacts preserve the request's measurement order.
	require.Len(t, resp.Impacts, 2)
	assert.Equal(t, "LDL cholesterol", resp.Impacts[0].BiomarkerName)
	assert.Equal(t, "Fasting glucose", resp.Impacts[1].BiomarkerName)

	require.NotNil(t, resp.Longevity)
	assert.Equal(t, 45, resp.Longevity.UserAge)

	// Glucose maps onto the static range table, so the deterministic
	// report is present.
	require.NotNil(t, resp.Deterministic)

	// Glucose also feeds the biological-age model.
	require.NotNil(t, resp.PhenoAge)

	// The run was persisted with the request fingerprint.
	require.Len(t, store.saved, 1)
	assert.Equal(t, resp.ReportID, store.saved[0].ID)
	assert.Equal(t, requestKey(req), store.saved[0].RequestHash)
	assert.Equal(t, 45, store.saved[0].UserAge)
}

func TestScore_CacheHit(t *testing.T) {
	cache := newMapCache()
	svc := newTestService(t, nil, cache)
	req := validScoreRequest()

	first, err := svc.Score(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Score(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ReportID, second.ReportID)
	assert.Equal(t, 1, cache.sets, "cache hit must not recompute")
}

func TestScoreWithProgress_BypassesCacheRead(t *testing.T) {
	cache := newMapCache()
	svc := newTestService(t, nil, cache)
	req := validScoreRequest()

	_, err := svc.Score(context.Background(), req)
	require.NoError(t, err)
	getsAfterWarmup := cache.gets

	var seen []domain.LongevityImpact
	resp, err := svc.ScoreWithProgress(context.Background(), req, func(impact domain.LongevityImpact) {
		seen = append(seen, impact)
	})
	require.NoError(t, err)

	// Streaming requests recompute so every impact can be delivered.
	assert.Equal(t, getsAfterWarmup, cache.gets)
	assert.Len(t, seen, len(resp.Impacts))
}

func TestScore_NilStoreAndCache(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.Score(context.Background(), validScoreRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestPhenoAge_Service(t *testing.T) {
	svc := newTestService(t, nil, nil)

	result, err := svc.PhenoAge(context.Background(), map[string]float64{
		scoring.FieldAgeYears: 50,
		scoring.FieldGlucose:  120,
		scoring.FieldCRP:      4.0,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.YearsBiologicalGained, 0.0)

	_, err = svc.PhenoAge(context.Background(), map[string]float64{scoring.FieldGlucose: 120})
	require.Error(t, err)
	var missing *domain.MissingInputError
	assert.ErrorAs(t, err, &missing)
}

func TestRequestKey_Deterministic(t *testing.T) {
	a := validScoreRequest()
	b := validScoreRequest()
	assert.Equal(t, requestKey(a), requestKey(b))

	b.Measurements[0].Value = 141
	assert.NotEqual(t, requestKey(a), requestKey(b))
}
