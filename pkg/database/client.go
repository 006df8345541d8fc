// Package database provides a pgx connection pool and schema migrations for
// chartpilot's own persisted state: the file_metadata sidecar that tracks
// ingested source files. The arbitrary, dynamically-discovered customer
// tables the catalog introspector reads are queried directly against the
// same Postgres instance by pkg/catalog.PgQuerier and pkg/query.Execute —
// this package owns the pool those collaborators share, plus the one table
// chartpilot itself writes.
package database

import (
	"context"
	stdsql "database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for golang-migrate

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

//go:embed migrations
var migrationsFS embed.FS

// Config holds database connection and pool settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// dsn builds a libpq-style connection string shared by both the migration
// driver (database/sql via the pgx stdlib shim) and the pool below.
func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Client wraps a pgx connection pool, satisfying pkg/query.Store so the
// query engine can execute validated SELECTs against it directly.
type Client struct {
	pool         *pgxpool.Pool
	databasePath string
}

// Pool returns the underlying pool for collaborators that need it directly
// (pkg/catalog.NewPgQuerier, health checks).
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// DatabasePath returns a password-free "host:port/dbname" string, the
// database_path reported by GET /database-status.
func (c *Client) DatabasePath() string {
	return c.databasePath
}

// Close releases the pool.
func (c *Client) Close() {
	c.pool.Close()
}

// NewClient runs pending migrations then opens a pooled connection.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{
		pool:         pool,
		databasePath: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
	}, nil
}

// Query implements pkg/query.Store: runs sql and scans every row into a
// models.Row keyed by column name, preserving declaration order in
// ColumnOrder for deterministic chart-axis ordering downstream.
func (c *Client) Query(ctx context.Context, sqlText string) (models.ExecutionResult, error) {
	start := time.Now()

	rows, err := c.pool.Query(ctx, sqlText)
	if err != nil {
		return models.ExecutionResult{SQL: sqlText, Error: err.Error()}, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columnOrder := make([]string, len(fields))
	for i, f := range fields {
		columnOrder[i] = f.Name
	}

	var result []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.ExecutionResult{SQL: sqlText, Error: err.Error()}, err
		}
		row := make(models.Row, len(columnOrder))
		for i, name := range columnOrder {
			row[name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return models.ExecutionResult{SQL: sqlText, Error: err.Error()}, err
	}

	return models.ExecutionResult{
		Rows:        result,
		ColumnOrder: columnOrder,
		Elapsed:     time.Since(start),
		RowCount:    len(result),
		OK:          true,
		SQL:         sqlText,
	}, nil
}

// runMigrations applies every embedded migration using golang-migrate's
// database/sql (pgx stdlib) driver, separately from the pgxpool used for
// everything else — golang-migrate does not speak pgx's native protocol.
func runMigrations(cfg Config) error {
	hasMigrations, err := hasEmbeddedMigrations()
	if err != nil {
		return fmt.Errorf("failed to check embedded migrations: %w", err)
	}
	if !hasMigrations {
		return fmt.Errorf("no embedded migration files found")
	}

	db, err := stdsql.Open("pgx", cfg.dsn())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	defer sourceDriver.Close()

	m, err := migrate.NewWithInstance("iofs", sourceDriver, cfg.Database, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func hasEmbeddedMigrations() (bool, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return false, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && len(entry.Name()) > 4 && entry.Name()[len(entry.Name())-4:] == ".sql" {
			return true, nil
		}
	}
	return false, nil
}
