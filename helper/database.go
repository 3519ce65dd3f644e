package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings of the vector store.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from CRAG_DB_* environment variables.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("CRAG_DB_HOST"),
		Port:     os.Getenv("CRAG_DB_PORT"),
		Database: os.Getenv("CRAG_DB_DATABASE"),
		Username: os.Getenv("CRAG_DB_USERNAME"),
		Password: os.Getenv("CRAG_DB_PASSWORD"),
		Schema:   GetEnvString("CRAG_DB_SCHEMA", "public"),
		SSLMode:  GetEnvString("CRAG_DB_SSLMODE", "require"),
	}

	if len(config.Host) == 0 || len(config.Port) == 0 || len(config.Database) == 0 || len(config.Username) == 0 || len(config.Password) == 0 {
		return nil, NewError("database configuration", fmt.Errorf("CRAG_DB_HOST, CRAG_DB_PORT, CRAG_DB_DATABASE, CRAG_DB_USERNAME and CRAG_DB_PASSWORD must be set"))
	}

	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	schema := c.Schema
	if schema == "" {
		schema = "public"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", sslMode)
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	return u.String()
}

// Database bundles the connection pool with the logger of its owner.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings a connection pool.
// The pool is safe for concurrent use and shared read-only by the query path.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(10)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := instance.PingContext(ctx); err != nil {
		_ = instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
