package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/parquet"
)

// ExecuteRunsExport exports the global run store to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	return ExportRuns(Manager.GetRunStore(), outputFile)
}

// ExportRuns writes <outputFile>.runs.parquet and <outputFile>.run_lakes.parquet.
func ExportRuns(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --runs-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	w := statusWriter
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total lake records: %d\n", status.TableSizes[runLakesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	lakes, err := store.GetAllRunLakes()
	if err != nil {
		return fmt.Errorf("failed to retrieve run lakes: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetLakes := parquet.ConvertRunLakeRecords(lakes)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	lakesFile := outputFile + ".run_lakes.parquet"
	if err := parquet.WriteRunLakesParquet(parquetLakes, lakesFile); err != nil {
		return fmt.Errorf("failed to write run lakes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d lake records to: %s\n", len(parquetLakes), lakesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Apache Arrow")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")

	return nil
}
