package helper

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDbName     = "database"
	testDbUser     = "user"
	testDbPassword = "password"
	testDbImage    = "pgvector/pgvector:pg16"
)

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container
// and returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(
		ctx,
		testDbImage,
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return pgContainer.Terminate, "", NewError("mapped port", err)
	}

	return pgContainer.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the CRAG_DB_* variables at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("CRAG_DB_HOST", "localhost")
	t.Setenv("CRAG_DB_PORT", port)
	t.Setenv("CRAG_DB_DATABASE", testDbName)
	t.Setenv("CRAG_DB_USERNAME", testDbUser)
	t.Setenv("CRAG_DB_PASSWORD", testDbPassword)
	t.Setenv("CRAG_DB_SCHEMA", "public")
	t.Setenv("CRAG_DB_SSLMODE", "disable")
}

// NewTestDatabase connects to the test container and panics on failure.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	db, err := NewDatabase("test", config, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		panic(err)
	}
	return db
}
