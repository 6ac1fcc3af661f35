package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/lakerisk/schema"
)

// jsonPredictionResult is the JSON shape of a prediction result, with ranks added.
type jsonPredictionResult struct {
	RunID       string                    `json:"run_id"`
	Species     string                    `json:"species"`
	Input       schema.EnvironmentVector  `json:"input"`
	Predictions []schema.RankedPrediction `json:"predictions"`
	Warning     string                    `json:"warning,omitempty"`
}

// writeJSONPredictions writes the prediction result in JSON format.
func writeJSONPredictions(w io.Writer, result *schema.PredictionResult) error {
	return writeJSON(w, jsonPredictionResult{
		RunID:       result.RunID,
		Species:     result.Species,
		Input:       result.Input,
		Predictions: schema.EnrichPredictions(result.Predictions),
		Warning:     result.Warning,
	})
}

// writeCSVPredictions writes one CSV row per ranked lake.
func writeCSVPredictions(w *csv.Writer, result *schema.PredictionResult, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"species",
		"lake",
		"region",
		"latitude",
		"longitude",
		"raw_score",
		"similarity",
		"adjusted_score",
		"risk_level",
		"presence",
		"warning",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, p := range result.Predictions {
		rec := []string{
			strconv.Itoa(i + 1),
			result.Species,
			p.LakeName,
			p.Region,
			strconv.FormatFloat(p.Latitude, 'f', -1, 64),
			strconv.FormatFloat(p.Longitude, 'f', -1, 64),
			fmtFloat(p.RawScore),
			fmtFloat(p.Similarity),
			fmtFloat(p.AdjustedScore),
			string(p.RiskLevel),
			string(p.Presence),
			result.Warning,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONTableRows writes table rows with the optional warning.
func writeJSONTableRows(w io.Writer, rows []schema.TableRow, warning string) error {
	if rows == nil {
		rows = []schema.TableRow{}
	}
	return writeJSON(w, schema.TableResponse{Rows: rows, Warning: warning})
}

// writeCSVTableRows writes table rows in CSV format.
func writeCSVTableRows(w io.Writer, rows []schema.TableRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"lake", "region", "score", "risk_level", "presence"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Lake, r.Region, fmtFloat(r.Score), string(r.RiskLevel), string(r.Presence)}); err != nil {
				return err
			}
		}
		return nil
	})
}
