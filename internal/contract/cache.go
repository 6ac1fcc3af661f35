package contract

import (
	"time"

	"github.com/huangsam/lakerisk/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetAttributionStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking scoring runs.
type RunStore interface {
	// BeginRun records the start of a scoring run.
	BeginRun(runID, species string, input schema.EnvironmentVector, startTime time.Time) error

	// RecordLakes stores the per-lake summary of a run.
	RecordLakes(runID string, records []schema.PredictionRecord, scoredAt time.Time) error

	// EndRun updates the run with completion data.
	EndRun(runID string, endTime time.Time, lakeCount int, warned bool, topLake string) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns retrieves every run in start order.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRunLakes retrieves every per-lake row.
	GetAllRunLakes() ([]schema.RunLakeRecord, error)

	// Close closes the underlying connection.
	Close() error
}
