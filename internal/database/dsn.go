package database

import (
	"fmt"
	"net/url"

	"github.com/longevity-score-server/internal/domain"
)

// DSN builds a postgres:// connection URL for database/sql with the pgx
// stdlib driver.
func DSN(cfg domain.DatabaseConfig) string {
	return buildURL("postgres", cfg)
}

// MigrateURL builds a pgx5:// connection URL for golang-migrate's pgx/v5
// database driver.
func MigrateURL(cfg domain.DatabaseConfig) string {
	return buildURL("pgx5", cfg)
}

func buildURL(scheme string, cfg domain.DatabaseConfig) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.Database,
	}
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
