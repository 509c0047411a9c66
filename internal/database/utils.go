package database

import (
	"database/sql"
	"fmt"

	"github.com/teamgrid/teamgrid/config"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// GetDSN returns the DSN for the shared database. All tenant schemas live in
// this one database; isolation happens at the schema level, not the
// connection level.
func GetDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// Connect opens the shared connection pool and applies pool settings. The
// pool is reused across all tenants; queries are schema-qualified per
// statement, so no session state needs resetting between tenants.
func Connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	return db, nil
}

// EnsureDatabaseExists creates the shared database if it doesn't exist.
// Connects to the maintenance database to issue the CREATE DATABASE.
func EnsureDatabaseExists(cfg *config.DatabaseConfig) error {
	pgDSN := fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", pgDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := db.QueryRow(query, cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createDBQuery := fmt.Sprintf("CREATE DATABASE %q", cfg.DBName)
		if _, err := db.Exec(createDBQuery); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}
