package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName        = "loan-engine"
	defaultMaxConns        = int32(10)
	defaultMaxConnIdleTime = 5 * time.Minute
	poolHealthCheckPeriod  = time.Minute
	connectPingTimeout     = 5 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

// NewConnectionPool opens the pool and refuses to return it until the
// database answers a ping.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty in configuration")
	}

	poolConfig, err := configurePool(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Connecting to PostgreSQL database...",
		"host", poolConfig.ConnConfig.Host,
		"maxConns", poolConfig.MaxConns,
	)
	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := verifyConnection(ctx, dbpool, logger); err != nil {
		dbpool.Close()
		return nil, err
	}

	logger.Info("Successfully connected to PostgreSQL database.", "host", poolConfig.ConnConfig.Host, "db", poolConfig.ConnConfig.Database)
	return dbpool, nil
}

// configurePool pins every session to UTC: schedule due dates and the
// overdue sweep compare DATE columns against UTC days.
func configurePool(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolConfig.HealthCheckPeriod = poolHealthCheckPeriod

	params := poolConfig.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	params["timezone"] = "UTC"

	return poolConfig, nil
}

func verifyConnection(ctx context.Context, db pinger, logger *slog.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()

	if err := db.Ping(pingCtx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		return fmt.Errorf("failed to ping database on connect: %w", err)
	}
	return nil
}
