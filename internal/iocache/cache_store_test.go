package iocache

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "test_table", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid name starting with underscore", "_test_table", false},
		{"valid mixed case", "TestTable_123", false},
		{"empty name", "", true},
		{"starts with number", "123_table", true},
		{"contains dash", "test-table", true},
		{"contains space", "test table", true},
		{"sql injection attempt", "test'; DROP TABLE users; --", true},
		{"contains dot", "test.table", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"lakerisk_cache"`},
		{schema.PostgreSQLBackend, `"lakerisk_cache"`},
		{schema.MySQLBackend, "`lakerisk_cache`"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("lakerisk_cache", tt.backend))
		})
	}
}

func TestSQLiteBackendOperations(t *testing.T) {
	t.Run("set and get operations", func(t *testing.T) {
		store := newSQLiteCacheStore(t)

		require.NoError(t, store.Set("key", []byte(`{"total_features":40}`), 1, 1700000000))

		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, `{"total_features":40}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1700000000), ts)
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store := newSQLiteCacheStore(t)

		require.NoError(t, store.Set("key", []byte("old"), 1, 100))
		require.NoError(t, store.Set("key", []byte("new"), 2, 200))

		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "new", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store := newSQLiteCacheStore(t)

		_, _, _, err := store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get on none backend")

	require.NoError(t, store.Set("test_key", []byte("test_value"), 1, 123456789))

	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get after Set on none backend")

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key) DO UPDATE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: "lakerisk_cache", backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains []string
	}{
		{schema.SQLiteBackend, []string{`"lakerisk_cache"`, "cache_value BLOB", "cache_timestamp INTEGER"}},
		{schema.MySQLBackend, []string{"`lakerisk_cache`", "cache_key VARCHAR(255)", "cache_timestamp BIGINT"}},
		{schema.PostgreSQLBackend, []string{`"lakerisk_cache"`, "cache_value BYTEA"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			query := getCreateTableQuery("lakerisk_cache", tt.backend)
			for _, want := range tt.contains {
				assert.Contains(t, query, want)
			}
		})
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
		assert.Error(t, err)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("lakerisk_cache", schema.DatabaseBackend("oracle"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported backend")
	})
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store := newSQLiteCacheStore(t)
		older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := older.Add(48 * time.Hour)
		require.NoError(t, store.Set("a", []byte("1"), 1, older.Unix()))
		require.NoError(t, store.Set("b", []byte("2"), 1, newer.Unix()))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, newer.Unix(), status.LastEntryTime.Unix())
		assert.Equal(t, older.Unix(), status.OldestEntryTime.Unix())
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("SQLite backend empty", func(t *testing.T) {
		store := newSQLiteCacheStore(t)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
	})
}

func TestRebind(t *testing.T) {
	query := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, query, rebind(query, schema.SQLiteBackend))
	assert.Equal(t, query, rebind(query, schema.MySQLBackend))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", rebind(query, schema.PostgreSQLBackend))
}

func TestFormatTimeSortsLexically(t *testing.T) {
	base := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	whole := formatTime(base, schema.SQLiteBackend).(string)
	frac := formatTime(base.Add(500*time.Millisecond), schema.SQLiteBackend).(string)
	assert.Less(t, whole, frac)
	assert.True(t, strings.HasSuffix(whole, "Z"))

	parsed, err := parseTime(frac)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base.Add(500*time.Millisecond)))

	native := formatTime(base, schema.PostgreSQLBackend)
	assert.Equal(t, base, native)
}
