package schema

import (
	"github.com/twpayne/go-geom/encoding/geojson"
)

// RankedPrediction adds a 1-based rank to a PredictionRecord.
type RankedPrediction struct {
	Rank int `json:"rank"`
	PredictionRecord
}

// GeoJSONCollection is a FeatureCollection with an optional reliability warning.
type GeoJSONCollection struct {
	Type     string             `json:"type"`
	Features []*geojson.Feature `json:"features"`
	Warning  string             `json:"warning,omitempty"`
}

// TableRow is the compact per-lake shape used for risk tables.
type TableRow struct {
	Lake      string    `json:"lake"`
	Region    string    `json:"region"`
	Score     float64   `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Presence  Presence  `json:"presence"`
}

// TableResponse wraps table rows with the optional reliability warning.
type TableResponse struct {
	Rows    []TableRow `json:"rows"`
	Warning string     `json:"warning,omitempty"`
}

// EnrichPredictions adds rank to a list of prediction records.
func EnrichPredictions(records []PredictionRecord) []RankedPrediction {
	output := make([]RankedPrediction, len(records))
	for i, r := range records {
		output[i] = RankedPrediction{
			Rank:             i + 1,
			PredictionRecord: r,
		}
	}
	return output
}
