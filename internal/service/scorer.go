// Package service orchestrates the scoring pipeline: it fans measurements
// out to the scoring engine, assembles the per-request report bundle, and
// handles caching and history persistence around the pure computation.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/history"
	"github.com/longevity-score-server/internal/scoring"
)

// ReportCache caches full score responses keyed by request hash.
type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.ScoreResponse, bool, error)
	Set(ctx context.Context, key string, resp *domain.ScoreResponse) error
}

// ProgressFunc receives each impact as it is computed. Invocations may
// arrive in any order; the final response preserves input order.
type ProgressFunc func(impact domain.LongevityImpact)

// ScoringService runs the full scoring pipeline for a request.
type ScoringService struct {
	catalog *catalog.Catalog
	engine  *scoring.Engine
	det     *scoring.DeterministicScorer
	store   history.Store
	cache   ReportCache
	log     *logrus.Logger
}

// NewScoringService creates a scoring service. store and cache may be nil;
// the service then runs compute-only.
func NewScoringService(cat *catalog.Catalog, store history.Store, cache ReportCache, logger *logrus.Logger) *ScoringService {
	return &ScoringService{
		catalog: cat,
		engine:  scoring.NewEngine(cat, logger),
		det:     scoring.NewDeterministicScorer(logger),
		store:   store,
		cache:   cache,
		log:     logger,
	}
}

// Score runs every score family for the request and returns the bundle.
func (s *ScoringService) Score(ctx context.Context, req *domain.ScoreRequest) (*domain.ScoreResponse, error) {
	return s.ScoreWithProgress(ctx, req, nil)
}

// ScoreWithProgress is Score with a per-impact progress callback.
func (s *ScoringService) ScoreWithProgress(ctx context.Context, req *domain.ScoreRequest, progress ProgressFunc) (*domain.ScoreResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	key := requestKey(req)

	if s.cache != nil && progress == nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.WithError(err).Warn("Report cache lookup failed")
		} else if ok {
			s.log.WithField("key", key).Debug("Report cache hit")
			return cached, nil
		}
	}

	impacts, skipped := s.computeImpacts(req, progress)

	resp := &domain.ScoreResponse{
		ReportID:       uuid.New().String(),
		Longevity:      s.engine.OverallScore(impacts, req.UserAge),
		Impacts:        impacts,
		Deterministic:  s.deterministicReport(req),
		PhenoAge:       s.phenoAgeReport(req),
		SkippedMarkers: skipped,
		Timestamp:      time.Now().UTC(),
	}
	resp.ProcessingTime = time.Since(start)

	s.log.WithFields(logrus.Fields{
		"report_id": resp.ReportID,
		"scored":    len(impacts),
		"skipped":   len(skipped),
		"score":     resp.Longevity.OverallScore,
	}).Info("Completed scoring run")

	s.persist(ctx, req, key, resp)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			s.log.WithError(err).Warn("Report cache store failed")
		}
	}

	return resp, nil
}

// PhenoAge computes the biological-age analysis for a raw biomarker map.
func (s *ScoringService) PhenoAge(ctx context.Context, biomarkers map[string]float64) (*domain.PhenoAgeResult, error) {
	return scoring.ComputeYearsGained(scoring.Biomarkers(biomarkers))
}

// computeImpacts scores all measurements concurrently. Measurements are
// independent; only the aggregation step needs the full set. Input order is
// preserved in the returned slice.
func (s *ScoringService) computeImpacts(req *domain.ScoreRequest, progress ProgressFunc) ([]domain.LongevityImpact, []string) {
	results := make([]*domain.LongevityImpact, len(req.Measurements))

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	for i, m := range req.Measurements {
		wg.Add(1)
		go func(i int, m domain.BiomarkerMeasurement) {
			defer wg.Done()
			impact := s.engine.BiomarkerImpact(m, req.UserAge)
			results[i] = impact
			if impact != nil && progress != nil {
				progressMu.Lock()
				progress(*impact)
				progressMu.Unlock()
			}
		}(i, m)
	}
	wg.Wait()

	impacts := make([]domain.LongevityImpact, 0, len(results))
	var skipped []string
	for i, impact := range results {
		if impact == nil {
			skipped = append(skipped, req.Measurements[i].Name)
			continue
		}
		impacts = append(impacts, *impact)
	}
	return impacts, skipped
}

// deterministicReport runs the range-based triage over the measurements
// that map onto the static range table. Returns nil when none do.
func (s *ScoringService) deterministicReport(req *domain.ScoreRequest) *domain.DeterministicReport {
	values := make(map[string]float64)
	for _, m := range req.Measurements {
		if key, ok := catalog.RangeKeyFor(m.Name); ok {
			if _, seen := values[key]; !seen {
				values[key] = m.Value
			}
		}
	}
	if len(values) == 0 {
		return nil
	}
	return s.det.Aggregate(values, req.UserAge, req.UserGender)
}

// phenoAgeReport computes the biological-age analysis from whatever model
// inputs the measurements provide. A failure here degrades the response to
// the other score families instead of aborting the pipeline.
func (s *ScoringService) phenoAgeReport(req *domain.ScoreRequest) *domain.PhenoAgeResult {
	input := buildPhenoAgeInput(req.Measurements, req.UserAge)
	result, err := scoring.ComputeYearsGained(input)
	if err != nil {
		s.log.WithError(err).Warn("PhenoAge computation skipped")
		return nil
	}
	return result
}

func (s *ScoringService) persist(ctx context.Context, req *domain.ScoreRequest, key string, resp *domain.ScoreResponse) {
	if s.store == nil {
		return
	}
	record := &history.Record{
		ID:          resp.ReportID,
		UserAge:     req.UserAge,
		UserGender:  req.UserGender,
		RequestHash: key,
		Response:    resp,
	}
	if err := s.store.Save(ctx, record); err != nil {
		s.log.WithError(err).WithField("report_id", resp.ReportID).Error("Failed to persist score report")
	}
}

func validateRequest(req *domain.ScoreRequest) error {
	if req.UserAge <= 0 || req.UserAge > 130 {
		return &domain.ValidationError{Field: "user_age", Message: "must be between 1 and 130", Value: req.UserAge}
	}
	if len(req.Measurements) == 0 {
		return &domain.ValidationError{Field: "measurements", Message: "at least one measurement is required", Value: len(req.Measurements)}
	}
	for i, m := range req.Measurements {
		if m.Name == "" {
			return &domain.ValidationError{Field: fmt.Sprintf("measurements[%d].name", i), Message: "name is required", Value: m.Name}
		}
	}
	return nil
}

// requestKey derives a stable cache key from the request content.
func requestKey(req *domain.ScoreRequest) string {
	payload, _ := json.Marshal(req)
	hash := sha256.Sum256(payload)
	return fmt.Sprintf("score:report:%x", hash[:16])
}
