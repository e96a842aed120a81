package domain

import (
	"time"
)

// Evidence Models

// StudyPopulation holds the cohort statistics of an epidemiological study.
// Observational records are frequently incomplete, so every field is a
// pointer; consumers must tolerate nil.
type StudyPopulation struct {
	NSubjects     *float64 `json:"n_subjects,omitempty"`
	NDeaths       *float64 `json:"n_deaths,omitempty"`
	FollowUpYears *float64 `json:"follow_up_years,omitempty"`
	MeanAge       *float64 `json:"mean_age,omitempty"`
	PercentFemale *float64 `json:"percent_female,omitempty"`
}

// OptimalValue is a study's definition of the optimal biomarker value.
// Depending on Type, different fields are populated: range uses
// RangeLow/RangeHigh, threshold uses Value/Direction.
type OptimalValue struct {
	Type      OptimalValueType   `json:"type"`
	RangeLow  *float64           `json:"range_low,omitempty"`
	RangeHigh *float64           `json:"range_high,omitempty"`
	Value     *float64           `json:"value,omitempty"`
	Direction ThresholdDirection `json:"direction,omitempty"`
	Unit      string             `json:"unit,omitempty"`
}

// StudyRecord is one epidemiological study from the evidence database.
// Only BiomarkerName and HazardRatio are guaranteed present.
type StudyRecord struct {
	BiomarkerName   string           `json:"biomarker_name"`
	HazardRatio     float64          `json:"hazard_ratio"`
	EffectMagnitude float64          `json:"effect_magnitude"`
	EffectDirection EffectDirection  `json:"effect_direction,omitempty"`
	OptimalValue    *OptimalValue    `json:"optimal_value,omitempty"`
	Population      *StudyPopulation `json:"population,omitempty"`
	PMID            string           `json:"pmid,omitempty"`
	Year            int              `json:"year,omitempty"`
}

// BiomarkerEvidence is the catalog entry for one biomarker: its study set
// plus the precomputed best study by raw effect magnitude.
type BiomarkerEvidence struct {
	Category           string        `json:"category"`
	Rank               int           `json:"rank"`
	MaxEffectMagnitude float64       `json:"max_effect_magnitude"`
	BestStudy          *StudyRecord  `json:"best_study,omitempty"`
	AllStudies         []StudyRecord `json:"all_studies"`
	StudyCount         int           `json:"study_count"`
}

// BiomarkerRange is the static optimal/acceptable band definition used by
// the deterministic scorer. Invariant:
// AcceptableLow <= OptimalLow <= OptimalHigh <= AcceptableHigh.
type BiomarkerRange struct {
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	OptimalLow     float64 `json:"optimal_low"`
	OptimalHigh    float64 `json:"optimal_high"`
	AcceptableLow  float64 `json:"acceptable_low"`
	AcceptableHigh float64 `json:"acceptable_high"`
	Weight         float64 `json:"weight"`
	HigherIsBetter bool    `json:"higher_is_better,omitempty"`
	Description    string  `json:"description,omitempty"`
}

// Request/Response Models

// BiomarkerMeasurement is one raw biomarker reading supplied per request.
type BiomarkerMeasurement struct {
	Name   string            `json:"name"`
	Value  float64           `json:"value"`
	Unit   string            `json:"unit,omitempty"`
	Source MeasurementSource `json:"source,omitempty"`
}

// ScoreRequest is an incoming scoring request.
type ScoreRequest struct {
	UserAge      int                    `json:"user_age" binding:"required"`
	UserGender   string                 `json:"user_gender,omitempty"`
	Measurements []BiomarkerMeasurement `json:"measurements" binding:"required"`
}

// ScoreResponse bundles every score family computed for one request.
type ScoreResponse struct {
	ReportID       string               `json:"report_id,omitempty"`
	Longevity      *OverallScoreReport  `json:"longevity"`
	Impacts        []LongevityImpact    `json:"impacts"`
	Deterministic  *DeterministicReport `json:"deterministic,omitempty"`
	PhenoAge       *PhenoAgeResult      `json:"phenoage,omitempty"`
	SkippedMarkers []string             `json:"skipped_markers,omitempty"`
	ProcessingTime time.Duration        `json:"processing_time"`
	Timestamp      time.Time            `json:"timestamp"`
}

// Derived Models

// LongevityImpact is the survival-model impact of one scored measurement.
type LongevityImpact struct {
	BiomarkerName string  `json:"biomarker_name"`
	UserValue     float64 `json:"user_value"`
	OptimalRange  string  `json:"optimal_range"`
	IsOptimal     bool    `json:"is_optimal"`

	HazardRatio              float64 `json:"hazard_ratio"`
	StudySurvivalRateOptimal float64 `json:"study_survival_rate_optimal"`
	StudySurvivalRateUser    float64 `json:"study_survival_rate_user"`
	StudyFollowUpYears       float64 `json:"study_follow_up_years"`

	HealthScore        int     `json:"health_score"`
	PotentialGainYears float64 `json:"potential_gain_years"`

	Category string `json:"category"`
}

// TopOpportunity summarizes the single biomarker with the largest potential gain.
type TopOpportunity struct {
	Biomarker    string  `json:"biomarker"`
	CurrentScore int     `json:"current_score"`
	BonusYears   float64 `json:"bonus_years"`
	YourValue    float64 `json:"your_value"`
	Target       string  `json:"target"`
}

// OverallScoreReport is the aggregate evidence-based longevity report.
type OverallScoreReport struct {
	OverallScore       int             `json:"overall_score"`
	ScoreLevel         ScoreLevel      `json:"score_level"`
	TotalBonusYears    float64         `json:"total_bonus_years"`
	TopOpportunity     *TopOpportunity `json:"top_opportunity,omitempty"`
	OptimizedCount     int             `json:"optimized_count"`
	OpportunitiesCount int             `json:"opportunities_count"`
	UserAge            int             `json:"user_age"`
}

// ComponentScore is one biomarker's deterministic score with display context.
type ComponentScore struct {
	Value        float64 `json:"value"`
	Score        float64 `json:"score"`
	Unit         string  `json:"unit"`
	OptimalRange string  `json:"optimal_range"`
	Description  string  `json:"description"`
}

// ProblematicMarker is a biomarker scoring below the triage threshold.
// Priority is severity times importance: weight * (100 - score) / 100.
type ProblematicMarker struct {
	Biomarker string  `json:"biomarker"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	Priority  float64 `json:"priority"`
}

// DeterministicReport is the fast range-based triage report.
type DeterministicReport struct {
	OverallScore         float64                   `json:"overall_score"`
	Grade                string                    `json:"grade"`
	Interpretation       string                    `json:"interpretation"`
	ComponentScores      map[string]ComponentScore `json:"component_scores"`
	ProblematicMarkers   []ProblematicMarker       `json:"problematic_markers"`
	Age                  int                       `json:"age"`
	Gender               string                    `json:"gender"`
	TotalMarkersAnalyzed int                       `json:"total_markers_analyzed"`
}

// BiomarkerContribution is the marginal biological-age benefit of fixing
// one PhenoAge biomarker while holding the others at their observed values.
type BiomarkerContribution struct {
	Biomarker              string  `json:"biomarker"`
	YearsGainedIfOptimized float64 `json:"years_gained_if_optimized"`
}

// PhenoAgeResult is the biological-age analysis for one biomarker set.
// FilledBiomarkers names the fields that were absent from the input and
// substituted with their optimal-target constants.
type PhenoAgeResult struct {
	BiologicalAgeNow          float64                 `json:"biological_age_now"`
	BiologicalAgeTarget       float64                 `json:"biological_age_target"`
	YearsBiologicalGained     float64                 `json:"years_biological_gained"`
	PerBiomarkerContributions []BiomarkerContribution `json:"per_biomarker_contributions"`
	FilledBiomarkers          []string                `json:"filled_biomarkers,omitempty"`
}

// Configuration Models

// Config is the main application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	History   HistoryConfig   `mapstructure:"history"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CatalogConfig points to the evidence database document.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig selects the report history backend.
// Driver is one of "sqlite", "postgres", "none".
type HistoryConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL settings for the history store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// CacheConfig holds report cache settings.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// RateLimitConfig holds API rate limit settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
