package ledger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/persistence"
)

// New returns the configured ledger backend.
func New(cfg config.LedgerConfig, pg *persistence.Postgres, runMigrations bool, logger *zap.Logger) (Ledger, error) {
	switch cfg.Backend {
	case config.LedgerBackendCSV:
		return NewCSV(cfg.Path), nil
	case config.LedgerBackendPostgres:
		if pg.PoolHandle() == nil {
			return nil, fmt.Errorf("postgres ledger requires a database connection")
		}
		return NewPostgres(pg.PoolHandle(), runMigrations, logger), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
