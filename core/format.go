package core

import (
	"github.com/huangsam/lakerisk/schema"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FlatList returns the records and warning exactly as scored.
func FlatList(result *schema.PredictionResult) ([]schema.PredictionRecord, string) {
	return result.Predictions, result.Warning
}

// ToGeoJSON projects a result onto a FeatureCollection of lake points.
func ToGeoJSON(result *schema.PredictionResult) schema.GeoJSONCollection {
	features := make([]*geojson.Feature, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		point := geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude})
		features = append(features, &geojson.Feature{
			Geometry: point,
			Properties: map[string]any{
				"name":          p.LakeName,
				"region":        p.Region,
				"prob":          p.AdjustedScore,
				"percentage":    p.AdjustedScore * 100,
				"risk_category": string(p.RiskLevel),
				"raw_score":     p.RawScore,
				"similarity":    p.Similarity,
				"presence":      string(p.Presence),
				"species":       result.Species,
			},
		})
	}
	return schema.GeoJSONCollection{
		Type:     "FeatureCollection",
		Features: features,
		Warning:  result.Warning,
	}
}

// ToTableRows projects a result onto table rows in the same order.
func ToTableRows(result *schema.PredictionResult) []schema.TableRow {
	rows := make([]schema.TableRow, len(result.Predictions))
	for i, p := range result.Predictions {
		rows[i] = schema.TableRow{
			Lake:      p.LakeName,
			Region:    p.Region,
			Score:     p.AdjustedScore,
			RiskLevel: p.RiskLevel,
			Presence:  p.Presence,
		}
	}
	return rows
}
