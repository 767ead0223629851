// Package helpers provides testing utilities for integration tests.
package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresStartupTimeout is the default timeout for PostgreSQL to start.
	DefaultPostgresStartupTimeout = 60 * time.Second

	testDatabaseName = "pricetracker_test"
	testDatabaseUser = "tracker"
	testDatabasePass = "tracker"
)

// PostgresContainer manages a test PostgreSQL instance.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
}

// StartPostgres starts a PostgreSQL container for testing.
// It returns a container instance that should be stopped with Stop().
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(DefaultPostgresStartupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		Container: pgContainer,
		DSN:       dsn,
	}, nil
}

// Connect opens a sqlx connection to the test database.
func (c *PostgresContainer) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return db, nil
}

// Stop terminates the container.
func (c *PostgresContainer) Stop(ctx context.Context) error {
	if c.Container == nil {
		return nil
	}
	return c.Container.Terminate(ctx)
}
