package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// schemaVersionTable keeps the archive's goose bookkeeping apart from any
// other schema in the same database.
const schemaVersionTable = "apocgo_schema_version"

// gooseLogger routes migration output through the archive logger.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }

// migrate applies the pending schema migrations for the world counters and
// the message history.
func (a *Archive) migrate(ctx context.Context) error {
	goose.SetLogger(gooseLogger{log: a.log.Named("migrate").Sugar()})
	goose.SetBaseFS(migrations)
	goose.SetTableName(schemaVersionTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(a.pool)
	defer db.Close()

	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read archive schema version: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read archive schema version: %w", err)
	}
	a.log.Info("archive schema ready", zap.Int64("from", before), zap.Int64("to", after))
	return nil
}
