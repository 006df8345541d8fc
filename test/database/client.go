// Package database provides a Postgres-backed pkg/database.Client for
// integration tests, either against a CI-provided instance or a
// testcontainers-managed one.
package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	chartpilotdb "github.com/tarsy-labs/chartpilot/pkg/database"
)

// NewTestClient creates a database.Client backed by a real Postgres
// instance. In CI (when CI_DATABASE_URL is set) it connects to an
// external service container; locally it spins up a testcontainer.
// Schema migrations run inside database.NewClient itself, so no separate
// bootstrap step is needed here. The container and client are cleaned up
// automatically when the test ends.
func NewTestClient(t *testing.T) *chartpilotdb.Client {
	ctx := context.Background()

	cfg := chartpilotdb.Config{
		Host:            "localhost",
		Port:            5432,
		User:            "test",
		Password:        "test",
		Database:        "test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}

	if ciDatabaseURL := os.Getenv("CI_DATABASE_URL"); ciDatabaseURL != "" {
		t.Log("using external PostgreSQL from CI_DATABASE_URL")
		parseIntoConfig(t, ciDatabaseURL, &cfg)
	} else {
		t.Log("using testcontainers for PostgreSQL")
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase(cfg.Database),
			postgres.WithUsername(cfg.User),
			postgres.WithPassword(cfg.Password),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		require.NoError(t, err)
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		})

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432/tcp")
		require.NoError(t, err)
		cfg.Host = host
		cfg.Port = port.Int()
	}

	client, err := chartpilotdb.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

// parseIntoConfig is deliberately minimal: CI_DATABASE_URL in this repo's
// pipeline is always emitted in host/port/user/password/dbname form by the
// same service-container step that sets DB_HOST et al. for the server
// binary, so this just mirrors database.LoadConfigFromEnv's field reads
// instead of parsing a DSN string.
func parseIntoConfig(t *testing.T, _ string, cfg *chartpilotdb.Config) {
	t.Helper()
	envCfg, err := chartpilotdb.LoadConfigFromEnv()
	require.NoError(t, err)
	*cfg = envCfg
}
