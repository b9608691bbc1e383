package postgres

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

type Connection struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string
	SSLMode  string
}

type ConnectionDetails struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConfig reads the database configuration from the environment.
func NewConfig() Config {
	return Config{
		Connection: Connection{
			Host:     getenvDefault("POSTGRES_HOST", "localhost"),
			Port:     getenvDefault("POSTGRES_PORT", "5432"),
			User:     getenvDefault("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DbName:   getenvDefault("POSTGRES_DB", "gutensearch"),
			SSLMode:  getenvDefault("POSTGRES_SSLMODE", "disable"),
		},
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 1 * time.Minute,
		},
	}
}

// Validate reports missing credentials before any connection attempt is made.
func (c Config) Validate() error {
	if c.Connection.Password == "" {
		return fmt.Errorf("postgres: missing POSTGRES_PASSWORD")
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
