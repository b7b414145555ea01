// Package backend builds the storage and messaging collaborators selected by configuration.
package backend

import (
	"context"

	"budget/internal/amqp"
	"budget/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function.
type BackendResult struct {
	Store storage.Store
	// Events is nil when AMQP is not configured or unreachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
	// Local is true when the store lives inside this process.
	Local bool
}

// CoherentCaching reports whether process-local caches of store reads stay
// correct: either no other process can write to the store, or every write is
// announced through change events.
func (r *BackendResult) CoherentCaching() bool {
	return r.Local || r.Events != nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	AMQPURL      string
	AMQPExchange string
	// EventSource tags published change events with this process's identity.
	EventSource string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Dialect maps SQL backends onto their storage dialect.
func (bt BackendType) Dialect() (storage.Dialect, bool) {
	switch bt {
	case SQLiteBackend:
		return storage.DialectSQLite, true
	case PostgresBackend:
		return storage.DialectPostgres, true
	default:
		return "", false
	}
}
