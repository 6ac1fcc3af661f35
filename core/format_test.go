package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func sampleResult() *schema.PredictionResult {
	return &schema.PredictionResult{
		RunID:   "run-1",
		Species: "Oreochromis niloticus",
		Input:   taalEnv,
		Warning: FarInputWarning,
		Predictions: []schema.PredictionRecord{
			{
				LakeName: "Lake Taal", Region: "CALABARZON", Latitude: 14.0, Longitude: 120.98,
				RawScore: 0.9, Similarity: 1, AdjustedScore: 0.9, RiskLevel: schema.HighRisk, Presence: schema.PresenceYes,
			},
			{
				LakeName: "Lake Danao", Region: "Leyte", Latitude: 11.05, Longitude: 124.95,
				RawScore: 0.5, Similarity: 0.5, AdjustedScore: 0.25, RiskLevel: schema.LowRisk, Presence: schema.PresenceNo,
			},
		},
	}
}

func TestFlatList(t *testing.T) {
	result := sampleResult()
	records, warning := FlatList(result)
	assert.Equal(t, result.Predictions, records)
	assert.Equal(t, FarInputWarning, warning)
}

func TestToGeoJSON(t *testing.T) {
	fc := ToGeoJSON(sampleResult())

	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, FarInputWarning, fc.Warning)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	point, ok := first.Geometry.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, 120.98, point.X(), "longitude first")
	assert.Equal(t, 14.0, point.Y())

	assert.Equal(t, "Lake Taal", first.Properties["name"])
	assert.Equal(t, 0.9, first.Properties["prob"])
	assert.InDelta(t, 90.0, first.Properties["percentage"], 1e-9)
	assert.Equal(t, "High", first.Properties["risk_category"])
	assert.Equal(t, "Yes", first.Properties["presence"])
	assert.Equal(t, "Oreochromis niloticus", first.Properties["species"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	features := decoded["features"].([]any)
	geometry := features[1].(map[string]any)["geometry"].(map[string]any)
	assert.Equal(t, "Point", geometry["type"])
	assert.Equal(t, []any{124.95, 11.05}, geometry["coordinates"])
}

func TestToGeoJSONEmpty(t *testing.T) {
	fc := ToGeoJSON(&schema.PredictionResult{})
	assert.Empty(t, fc.Features)
	assert.Empty(t, fc.Warning)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestToTableRows(t *testing.T) {
	rows := ToTableRows(sampleResult())
	require.Len(t, rows, 2)
	assert.Equal(t, schema.TableRow{
		Lake: "Lake Taal", Region: "CALABARZON", Score: 0.9, RiskLevel: schema.HighRisk, Presence: schema.PresenceYes,
	}, rows[0])
	assert.Equal(t, "Lake Danao", rows[1].Lake)
}

func TestFormatsAgreeWithScoring(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})
	result, err := eng.ScoreAllLakes(context.Background(), "Channa striata", taalEnv, ScoreOptions{})
	require.NoError(t, err)

	fc := ToGeoJSON(result)
	rows := ToTableRows(result)
	require.Len(t, fc.Features, len(result.Predictions))
	require.Len(t, rows, len(result.Predictions))
	for i, p := range result.Predictions {
		assert.Equal(t, p.LakeName, fc.Features[i].Properties["name"])
		assert.Equal(t, p.LakeName, rows[i].Lake)
		assert.Equal(t, p.AdjustedScore, rows[i].Score)
	}
}
