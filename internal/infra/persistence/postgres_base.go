package persistence

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taisys-technologies/voc-vault/pkg/postgres"
)

// PostgresBase provides a base implementation for PostgreSQL-backed stores.
// It centralizes connection management and common logging.
type PostgresBase struct {
	*postgres.Client
	logger *slog.Logger
}

// NewPostgresBase creates a new PostgresBase.
func NewPostgresBase(db *pgxpool.Pool, logger *slog.Logger) *PostgresBase {
	return &PostgresBase{
		Client: postgres.NewClient(db),
		logger: logger,
	}
}
