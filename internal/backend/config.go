package backend

import (
	"errors"
	"fmt"
	"os"

	"budget/internal/config"
	"budget/internal/storage"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		EventSource:  eventSource(),
	}, nil
}

func eventSource() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "budget"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for postgres backend")
		}
	}

	if c.AMQPURL != "" && c.AMQPExchange == "" {
		return errors.New("AMQP exchange is required when AMQP URL is set")
	}
	return nil
}

// DSN returns the migration/driver connection string for SQL backends.
func (c Config) DSN() (storage.Dialect, string, error) {
	dialect, ok := c.Type.Dialect()
	if !ok {
		return "", "", fmt.Errorf("backend %s has no SQL schema", c.Type)
	}
	if dialect == storage.DialectSQLite {
		return dialect, storage.SQLiteDSN(c.SQLiteDBPath), nil
	}
	return dialect, c.DatabaseURL, nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend}
}
