// Package history provides persistent storage for generated score reports.
// Reports are written after every scoring run so users can retrieve past
// results and track biomarker trends over time.
package history

import (
	"context"
	"io"
	"time"

	"github.com/longevity-score-server/internal/domain"
)

// Record is one stored score report with its request fingerprint.
type Record struct {
	ID          string                `json:"id"`
	UserAge     int                   `json:"user_age"`
	UserGender  string                `json:"user_gender,omitempty"`
	RequestHash string                `json:"request_hash"`
	Response    *domain.ScoreResponse `json:"response"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Store defines the interface for report history storage.
type Store interface {
	// Save stores a score report. Saving an existing report ID replaces
	// the stored response.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a report by ID. Returns nil without error when the
	// report does not exist.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns stored reports newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// Count returns the total number of stored reports.
	Count(ctx context.Context) (int64, error)

	// Delete removes a report by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON exports all reports to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports reports from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reports    []*Record `json:"reports"`
}
