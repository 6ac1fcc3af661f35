package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleEnv   = schema.EnvironmentVector{PH: 7.5, Salinity: 0.5, DissolvedOxygen: 6, BOD: 2, Turbidity: 10, Temperature: 27}
	sampleStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

func sampleLakes() []schema.PredictionRecord {
	return []schema.PredictionRecord{
		{LakeName: "Lake Taal", RawScore: 0.8, Similarity: 0.9, AdjustedScore: 0.72, RiskLevel: schema.HighRisk, Presence: schema.PresenceYes},
		{LakeName: "Lake Buhi", RawScore: 0.5, Similarity: 0.6, AdjustedScore: 0.3, RiskLevel: schema.LowRisk, Presence: schema.PresenceNo},
	}
}

func newSQLiteRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.NoError(t, store.BeginRun("r1", "Cyprinus carpio", sampleEnv, time.Now()))
	assert.NoError(t, store.RecordLakes("r1", sampleLakes(), time.Now()))
	assert.NoError(t, store.EndRun("r1", time.Now(), 2, false, "Lake Taal"))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store := newSQLiteRunStore(t)

	start := sampleStart
	end := start.Add(1500 * time.Millisecond)

	require.NoError(t, store.BeginRun("run-1", "Oreochromis niloticus", sampleEnv, start))
	require.NoError(t, store.RecordLakes("run-1", sampleLakes(), end))
	require.NoError(t, store.EndRun("run-1", end, 2, true, "Lake Taal"))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "Oreochromis niloticus", run.Species)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, end.Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.LakeCount)
	assert.True(t, run.Warned)
	require.NotNil(t, run.TopLake)
	assert.Equal(t, "Lake Taal", *run.TopLake)

	var input schema.EnvironmentVector
	require.NoError(t, json.Unmarshal([]byte(run.InputParams), &input))
	assert.Equal(t, sampleEnv, input)

	lakes, err := store.GetAllRunLakes()
	require.NoError(t, err)
	require.Len(t, lakes, 2)
	assert.Equal(t, "Lake Buhi", lakes[0].LakeName) // ordered by lake name
	assert.Equal(t, "Low", lakes[0].RiskLevel)
	assert.Equal(t, "No", lakes[0].Presence)
	assert.InDelta(t, 0.72, lakes[1].AdjustedScore, 1e-12)
	assert.True(t, end.Equal(lakes[1].ScoredAt))
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteRunStore(t)
	require.NoError(t, store.BeginRun("run-open", "Chanos chanos", sampleEnv, time.Now()))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Nil(t, runs[0].TopLake)
	assert.False(t, runs[0].Warned)
}

func TestRunStore_EndRunWithoutTopLake(t *testing.T) {
	store := newSQLiteRunStore(t)
	now := time.Now()
	require.NoError(t, store.BeginRun("run-empty", "Gambusia affinis", sampleEnv, now))
	require.NoError(t, store.EndRun("run-empty", now, 0, false, ""))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].TopLake)
}

func TestRunStore_EndRunUnknown(t *testing.T) {
	store := newSQLiteRunStore(t)
	err := store.EndRun("missing", time.Now(), 1, false, "Lake Taal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get start_time for run missing")
}

func TestRunStore_DuplicateLakeRollsBack(t *testing.T) {
	store := newSQLiteRunStore(t)
	require.NoError(t, store.BeginRun("run-dup", "Cyprinus carpio", sampleEnv, time.Now()))

	dup := append(sampleLakes(), sampleLakes()[0])
	require.Error(t, store.RecordLakes("run-dup", dup, time.Now()))

	lakes, err := store.GetAllRunLakes()
	require.NoError(t, err)
	assert.Empty(t, lakes)
}

func TestRunStore_GetStatus(t *testing.T) {
	store := newSQLiteRunStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		start := first.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.BeginRun(id, "Clarias batrachus", sampleEnv, start))
		require.NoError(t, store.RecordLakes(id, sampleLakes(), start))
		require.NoError(t, store.EndRun(id, start.Add(time.Second), 2, i == 1, "Lake Taal"))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, "run-c", status.LastRunID)
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalLakesScored)
	assert.Equal(t, 1, status.WarnedRuns)
	assert.Equal(t, map[string]int64{runsTable: 3, runLakesTable: 6}, status.TableSizes)
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestGetCreateRunQueries(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			runs := getCreateRunsQuery(backend)
			lakes := getCreateRunLakesQuery(backend)
			assert.Contains(t, runs, quoteTableName(runsTable, backend))
			assert.Contains(t, runs, "run_id")
			assert.Contains(t, lakes, quoteTableName(runLakesTable, backend))
			assert.Contains(t, lakes, "PRIMARY KEY (run_id, lake_name)")
		})
	}
}
