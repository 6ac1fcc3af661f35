package schema

import "time"

// RunRecord represents a row from the lakerisk_runs table.
type RunRecord struct {
	RunID         string
	Species       string
	InputParams   string // JSON-encoded EnvironmentVector
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	LakeCount     int32
	Warned        bool
	TopLake       *string
}

// RunLakeRecord represents a row from the lakerisk_run_lakes table.
type RunLakeRecord struct {
	RunID         string
	LakeName      string
	RawScore      float64
	Similarity    float64
	AdjustedScore float64
	RiskLevel     string
	Presence      string
	ScoredAt      time.Time
}
