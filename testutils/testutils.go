// Package testutils provides test support for the pool: environment-derived
// DSNs for the real driver factories, and an in-memory fake database/sql
// driver whose failure modes can be scripted, so pool semantics are testable
// without a live database.
package testutils

import (
	"fmt"
	"os"
	"strconv"
)

// TestDBConfig represents database configuration for tests
type TestDBConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// DefaultMySQLConfig returns the MySQL configuration for tests, resolved from
// TEST_MYSQL_* environment variables.
func DefaultMySQLConfig() TestDBConfig {
	return TestDBConfig{
		Driver:   "mysql",
		Host:     getEnvOrDefault("TEST_MYSQL_HOST", ""),
		Port:     getEnvIntOrDefault("TEST_MYSQL_PORT", 3306),
		User:     getEnvOrDefault("TEST_MYSQL_USER", "root"),
		Password: getEnvOrDefault("TEST_MYSQL_PASSWORD", "123456"),
		DBName:   getEnvOrDefault("TEST_MYSQL_DBNAME", "test"),
	}
}

// DefaultPostgresConfig returns the PostgreSQL configuration for tests,
// resolved from TEST_POSTGRES_* environment variables.
func DefaultPostgresConfig() TestDBConfig {
	return TestDBConfig{
		Driver:   "postgres",
		Host:     getEnvOrDefault("TEST_POSTGRES_HOST", ""),
		Port:     getEnvIntOrDefault("TEST_POSTGRES_PORT", 5432),
		User:     getEnvOrDefault("TEST_POSTGRES_USER", "postgres"),
		Password: getEnvOrDefault("TEST_POSTGRES_PASSWORD", "123456"),
		DBName:   getEnvOrDefault("TEST_POSTGRES_DBNAME", "test"),
	}
}

// Available reports whether a test server was configured for this database.
// Tests against real servers skip when the host env var is unset.
func (c TestDBConfig) Available() bool {
	return c.Host != ""
}

// DSN builds the connection string for the configured database.
func (c TestDBConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	default:
		return ""
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
