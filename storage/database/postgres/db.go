package postgres

import (
	"context"
	"embed"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/entregas/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

type DB struct {
	db *sqlx.DB
}

var _ core.Pinger = (*DB)(nil) // interface compliance check

// Open connects to the configured PostgreSQL database & waits for it to be ready.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	db, err := sqlx.Open("postgres", conf.Database.URI)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, conf.Database.ConnectTimeout)
	defer cancel()
	if err = ping(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	for attempts := 1; ; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(err, "DB ping timeout")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Migrate runs a goose command (up, down, status, ...) against the embedded migrations.
func (db *DB) Migrate(ctx context.Context, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.RunContext(ctx, command, db.db.DB, migrationsDir, args...); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
