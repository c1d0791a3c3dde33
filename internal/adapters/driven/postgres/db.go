package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// schemaLockName serializes schema setup across instances starting together.
// Concurrent CREATE EXTENSION calls otherwise race on pg_extension.
const schemaLockName = "ingest-core:schema"

// DB is the connection pool shared by the suggestion, artifact and vector
// stores and the advisory lock.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds pool settings. Zero values take the defaults below.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// ConnectAttempts bounds startup pings while the database comes up
	ConnectAttempts int
	RetryInterval   time.Duration

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = time.Minute
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 5
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Connect opens the pool and pings until the database answers, the attempts
// run out or ctx is cancelled.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is required")
	}
	cfg = cfg.withDefaults()

	pool, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := pingWithRetry(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{DB: pool, logger: cfg.Logger}, nil
}

func pingWithRetry(ctx context.Context, pool *sql.DB, cfg Config) error {
	var err error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		if err = pool.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == cfg.ConnectAttempts {
			break
		}
		cfg.Logger.Warn("database not ready", "attempt", attempt, "retry_in", cfg.RetryInterval, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return fmt.Errorf("ping database after %d attempts: %w", cfg.ConnectAttempts, err)
}

// InitSchema applies the embedded schema. It is idempotent and holds a
// transaction-scoped advisory lock while it runs.
func (db *DB) InitSchema(ctx context.Context) error {
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, hashLockName(schemaLockName)); err != nil {
			return fmt.Errorf("lock schema: %w", err)
		}
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	db.logger.Info("database schema ready")
	return nil
}

// Ping reports whether the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction runs fn in a transaction, committing only if fn succeeds.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// nullString stores an empty id as NULL so parent and artifact references
// stay optional.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
