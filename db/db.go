// Package db opens the configured database and applies its schema migrations.
// Postgres goes through a pgx pool exposed as database/sql; SQLite uses the pure-Go
// modernc driver. Both are wrapped in sqlx so the stores share one implementation.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/config"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// Handle is an open database. Close releases the sql.DB and, for Postgres, the pool behind it.
type Handle struct {
	*sqlx.DB
	Driver string
	pool   *pgxpool.Pool
}

// Close closes the database.
func (h *Handle) Close() error {
	err := h.DB.Close()
	if h.pool != nil {
		h.pool.Close()
	}
	return err
}

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Handle, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.Postgres)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
}

// Migrate applies all pending migrations for the handle's driver.
func Migrate(ctx context.Context, h *Handle, cfg *config.DatabaseConfig, logger *slog.Logger) error {
	switch h.Driver {
	case config.DriverPostgres:
		return RunPostgresMigrations(cfg.Postgres, logger)
	case config.DriverSQLite:
		return MigrateSQLite(ctx, h)
	default:
		return apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", h.Driver), nil)
	}
}

// NewPostgres creates a pgx pool, verifies it with a ping, and exposes it through sqlx.
func NewPostgres(ctx context.Context, cfg *config.PoolConfig) (*Handle, error) {
	if cfg == nil {
		return nil, apperror.NewConfigError("postgres configuration is missing", nil)
	}

	poolConfig, err := pgxpool.ParseConfig(postgresDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}
	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	return &Handle{DB: sqlx.NewDb(sqlDB, "pgx"), Driver: config.DriverPostgres, pool: pool}, nil
}

// OpenSQLite opens (creating if needed) the SQLite database at path with foreign keys enforced.
// ":memory:" gives a private in-memory database bound to a single connection.
func OpenSQLite(ctx context.Context, path string) (*Handle, error) {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	dsn := "file:" + path + "?" + pragmas
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to open sqlite database", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: alive.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperror.NewDatabaseError("failed to connect to sqlite database", err)
	}
	return &Handle{DB: sqlDB, Driver: config.DriverSQLite}, nil
}

// MigrateSQLite applies the embedded goose migrations.
func MigrateSQLite(ctx context.Context, h *Handle) error {
	goose.SetBaseFS(sqliteMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return apperror.NewDatabaseError("failed to set goose dialect", err)
	}
	if err := goose.UpContext(ctx, h.DB.DB, "migrations/sqlite"); err != nil {
		return apperror.NewDatabaseError("failed to run sqlite migrations", err)
	}
	return nil
}

// RunPostgresMigrations applies the embedded golang-migrate migrations.
func RunPostgresMigrations(cfg *config.PoolConfig, logger *slog.Logger) error {
	if cfg == nil {
		return apperror.NewConfigError("postgres configuration is missing", nil)
	}

	src, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return apperror.NewDatabaseError("failed to read embedded migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, postgresDSN(cfg))
	if err != nil {
		return apperror.NewDatabaseError("failed to create migrator", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("error closing migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewDatabaseError("failed to run migrations", err)
	}
	return nil
}

func postgresDSN(cfg *config.PoolConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}
