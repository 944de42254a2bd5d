package database

import (
	"context"
	"fmt"
	"time"

	"github.com/frontandrew/caretrip/internal/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "caretrip"
	pingTimeout     = 5 * time.Second
)

// Connect создает пул подключений к PostgreSQL
// Сессии работают в часовом поясе приложения, чтобы NOW() и даты записей совпадали
func Connect(ctx context.Context, cfg *config.DatabaseConfig, location *time.Location) (*pgxpool.Pool, error) {
	poolConfig, err := newPoolConfig(cfg, location)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func newPoolConfig(cfg *config.DatabaseConfig, location *time.Location) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= cfg.MaxOpenConns {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if location != nil {
		params["timezone"] = location.String()
	}

	return poolConfig, nil
}

// Close закрывает пул подключений
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
