package cmd

import (
	"fmt"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/iocache"
	"github.com/huangsam/lakerisk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads and validates the run tracking backend settings.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr := viper.GetString("runs-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("runs-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup() error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no attribution cache for runs commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This does NOT initialize stores or create tables, so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsDBFilePath returns the SQLite file backing run tracking.
func runsDBFilePath() string {
	if cfg.RunsBackend == schema.SQLiteBackend && cfg.RunsDBConnect != "" {
		return cfg.RunsDBConnect
	}
	return contract.GetRunsDBFilePath()
}

// runsCmd focused on run tracking management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage scoring run history and exports",
	Long: `Manage the history of scoring runs.

When --runs-backend is set, every scoring request is tracked, storing:
- Run metadata (species, input conditions, timing, warning flag, top lake)
- One summary row per lake (raw, similarity, adjusted score, risk level, presence)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track runs in SQLite
  lakerisk predict "Oreochromis niloticus" --runs-backend sqlite

  # Check tracking status
  lakerisk runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  lakerisk runs export --runs-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all scoring run history",
	Long: `Delete all stored runs and per-lake summaries.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  lakerisk runs export --runs-backend sqlite --output-file backup
  lakerisk runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before removing the file
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunsBackend, runsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about scoring run tracking.

Displays:
- Backend type and connection status
- Total number of runs and the most recent run ID
- Last and oldest run timestamps
- Total lakes scored and runs with a reliability warning
- Table row counts

Examples:
  lakerisk runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format.

Exports two datasets:
- <output-file>.runs.parquet      - one row per scoring run
- <output-file>.run_lakes.parquet - one row per lake per run

Requires: --output-file parameter

Examples:
  lakerisk runs export --runs-backend sqlite --output-file runs
  duckdb -c "SELECT species, top_lake FROM read_parquet('runs.runs.parquet')"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  lakerisk runs migrate --runs-backend sqlite

  # Migrate to specific version
  lakerisk runs migrate --runs-backend sqlite --target-version 2

  # Roll back everything
  lakerisk runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
