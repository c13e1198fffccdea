package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/apocgo/server/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	archiveApplicationName = "apocgo"
	archiveConnectTimeout  = 5 * time.Second
)

// Archive is the PostgreSQL store behind the id counters and the message
// history. Only the persistence writer and startup touch it, so the pool
// stays small.
type Archive struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// OpenArchive connects to the archive database and brings its schema up to
// date.
func OpenArchive(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Archive, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse archive dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = archiveApplicationName

	connectCtx, cancel := context.WithTimeout(ctx, archiveConnectTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open archive pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach archive: %w", err)
	}

	a := &Archive{pool: pool, log: log}
	if err := a.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("archive opened",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return a, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}
