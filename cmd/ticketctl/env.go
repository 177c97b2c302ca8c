package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/ledger"
	"github.com/spec-kit/complaint-tickets/internal/observability"
	"github.com/spec-kit/complaint-tickets/internal/persistence"
)

// env holds the resources opened for one command invocation.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	redis  *persistence.Redis
	ledger ledger.Ledger
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Logger.Output == "" || cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func openEnv(ctx context.Context, withRedis bool) (*env, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, pg: &persistence.Postgres{}, redis: &persistence.Redis{}}

	if cfg.Ledger.Backend == config.LedgerBackendPostgres {
		e.pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}
	if withRedis {
		e.redis = persistence.NewRedis(cfg.Redis, logger)
	}
	e.ledger, err = ledger.New(cfg.Ledger, e.pg, cfg.Postgres.RunMigrations, logger)
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) close() {
	e.redis.Close()
	e.pg.Close()
	_ = e.logger.Sync()
}
