// Package parquet provides data structures and functions for exporting lakerisk
// predictions and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/lakerisk/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single scoring run with metadata.
// This struct maps to the lakerisk_runs database table.
type Run struct {
	// RunID is the UUID of the scoring run
	RunID string `parquet:"run_id,snappy"`

	// Species is the scientific name that was scored
	Species string `parquet:"species,snappy"`

	// InputParams contains the JSON-encoded environment vector
	InputParams string `parquet:"input_params,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// LakeCount is the number of lakes scored
	LakeCount int32 `parquet:"lake_count,snappy"`

	// Warned marks runs whose inputs were far from every lake baseline
	Warned bool `parquet:"warned,snappy"`

	// TopLake is the highest ranked lake (nullable)
	TopLake *string `parquet:"top_lake,optional,snappy"`
}

// RunLake represents the score of one lake within a run.
// This struct maps to the lakerisk_run_lakes database table.
type RunLake struct {
	RunID         string    `parquet:"run_id,snappy"`
	LakeName      string    `parquet:"lake_name,snappy"`
	RawScore      float64   `parquet:"raw_score,snappy"`
	Similarity    float64   `parquet:"similarity,snappy"`
	AdjustedScore float64   `parquet:"adjusted_score,snappy"`
	RiskLevel     string    `parquet:"risk_level,snappy"`
	Presence      string    `parquet:"presence,snappy"`
	ScoredAt      time.Time `parquet:"scored_at,snappy"`
}

// Prediction is one ranked lake of a prediction result, flattened with the request inputs.
type Prediction struct {
	Rank          int32   `parquet:"rank,snappy"`
	Species       string  `parquet:"species,snappy"`
	LakeName      string  `parquet:"lake_name,snappy"`
	Region        string  `parquet:"region,snappy"`
	Latitude      float64 `parquet:"latitude,snappy"`
	Longitude     float64 `parquet:"longitude,snappy"`
	RawScore      float64 `parquet:"raw_score,snappy"`
	Similarity    float64 `parquet:"similarity,snappy"`
	AdjustedScore float64 `parquet:"adjusted_score,snappy"`
	RiskLevel     string  `parquet:"risk_level,snappy"`
	Presence      string  `parquet:"presence,snappy"`

	InputPH              float64 `parquet:"input_ph,snappy"`
	InputSalinity        float64 `parquet:"input_salinity,snappy"`
	InputDissolvedOxygen float64 `parquet:"input_dissolved_oxygen,snappy"`
	InputBOD             float64 `parquet:"input_bod,snappy"`
	InputTurbidity       float64 `parquet:"input_turbidity,snappy"`
	InputTemperature     float64 `parquet:"input_temperature,snappy"`

	RunID   string  `parquet:"run_id,snappy"`
	Warning *string `parquet:"warning,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunLakesParquet writes a slice of RunLake structs to a Parquet file.
func WriteRunLakesParquet(data []RunLake, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePredictionsParquet writes a slice of Prediction structs to a Parquet file.
func WritePredictionsParquet(data []Prediction, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from T's struct tags and writes every row.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Species:       record.Species,
			InputParams:   record.InputParams,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			LakeCount:     record.LakeCount,
			Warned:        record.Warned,
			TopLake:       record.TopLake,
		}
	}
	return result
}

// ConvertRunLakeRecords converts schema.RunLakeRecord to RunLake for Parquet export.
func ConvertRunLakeRecords(records []schema.RunLakeRecord) []RunLake {
	result := make([]RunLake, len(records))
	for i, record := range records {
		result[i] = RunLake{
			RunID:         record.RunID,
			LakeName:      record.LakeName,
			RawScore:      record.RawScore,
			Similarity:    record.Similarity,
			AdjustedScore: record.AdjustedScore,
			RiskLevel:     record.RiskLevel,
			Presence:      record.Presence,
			ScoredAt:      record.ScoredAt,
		}
	}
	return result
}

// ConvertPredictionResult flattens a prediction result into ranked Parquet rows.
func ConvertPredictionResult(result *schema.PredictionResult) []Prediction {
	var warning *string
	if result.Warning != "" {
		w := result.Warning
		warning = &w
	}
	rows := make([]Prediction, len(result.Predictions))
	for i, p := range result.Predictions {
		rows[i] = Prediction{
			Rank:                 int32(i + 1),
			Species:              result.Species,
			LakeName:             p.LakeName,
			Region:               p.Region,
			Latitude:             p.Latitude,
			Longitude:            p.Longitude,
			RawScore:             p.RawScore,
			Similarity:           p.Similarity,
			AdjustedScore:        p.AdjustedScore,
			RiskLevel:            string(p.RiskLevel),
			Presence:             string(p.Presence),
			InputPH:              result.Input.PH,
			InputSalinity:        result.Input.Salinity,
			InputDissolvedOxygen: result.Input.DissolvedOxygen,
			InputBOD:             result.Input.BOD,
			InputTurbidity:       result.Input.Turbidity,
			InputTemperature:     result.Input.Temperature,
			RunID:                result.RunID,
			Warning:              warning,
		}
	}
	return rows
}
