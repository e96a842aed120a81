package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/history"
	"github.com/longevity-score-server/internal/service"
)

// Scorer is the scoring surface the handlers need. Narrowed from the full
// service so tests can stub it.
type Scorer interface {
	Score(ctx context.Context, req *domain.ScoreRequest) (*domain.ScoreResponse, error)
	ScoreWithProgress(ctx context.Context, req *domain.ScoreRequest, progress service.ProgressFunc) (*domain.ScoreResponse, error)
	PhenoAge(ctx context.Context, biomarkers map[string]float64) (*domain.PhenoAgeResult, error)
}

// ReportStore is the history surface the handlers need.
type ReportStore interface {
	Get(ctx context.Context, id string) (*history.Record, error)
	List(ctx context.Context, limit, offset int) ([]*history.Record, error)
	Count(ctx context.Context) (int64, error)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleScore runs the full scoring pipeline for a biomarker panel.
func (s *Server) handleScore(c *gin.Context) {
	var req domain.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid request body", err.Error())
		return
	}

	resp, err := s.scorer.Score(c.Request.Context(), &req)
	if err != nil {
		if verr, ok := err.(*domain.ValidationError); ok {
			s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, verr.Message, verr.Field)
			return
		}
		s.log.WithError(err).Error("Scoring request failed")
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "scoring failed", "")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// phenoAgeRequest is the body of POST /api/v1/phenoage: biomarker values
// keyed by the model's field names.
type phenoAgeRequest struct {
	Biomarkers map[string]float64 `json:"biomarkers" binding:"required"`
}

// handlePhenoAge computes the biological-age analysis in isolation.
func (s *Server) handlePhenoAge(c *gin.Context) {
	var req phenoAgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid request body", err.Error())
		return
	}

	result, err := s.scorer.PhenoAge(c.Request.Context(), req.Biomarkers)
	if err != nil {
		if merr, ok := err.(*domain.MissingInputError); ok {
			s.respondError(c, http.StatusBadRequest, domain.ErrMissingRequiredInput, merr.Error(), merr.Field)
			return
		}
		s.log.WithError(err).Error("PhenoAge request failed")
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "phenoage computation failed", "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGetReport retrieves a stored score report by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	if s.reports == nil {
		s.respondError(c, http.StatusNotFound, domain.ErrDatabaseError, "report history is disabled", "")
		return
	}

	id := c.Param("id")
	record, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).WithField("report_id", id).Error("Failed to load report")
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to load report", "")
		return
	}
	if record == nil {
		s.respondError(c, http.StatusNotFound, domain.ErrInvalidInput, "report not found", id)
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleListReports lists stored reports newest first.
func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		s.respondError(c, http.StatusNotFound, domain.ErrDatabaseError, "report history is disabled", "")
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.reports.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.WithError(err).Error("Failed to list reports")
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to list reports", "")
		return
	}

	total, err := s.reports.Count(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to count reports")
		s.respondError(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to count reports", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString("correlation_id")))
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
