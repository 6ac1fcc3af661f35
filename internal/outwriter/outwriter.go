// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/parquet"
	"github.com/huangsam/lakerisk/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintPredictions outputs a prediction result, dispatching based on the output format configured.
func PrintPredictions(result *schema.PredictionResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONPredictions(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVPredictions(csvWriter, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WritePredictionsParquet(parquet.ConvertPredictionResult(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(noticeWriter, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionsTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// PrintGeoJSON outputs a FeatureCollection. GeoJSON is always JSON, whatever the output format.
func PrintGeoJSON(fc schema.GeoJSONCollection, cfg *contract.Config) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, fc)
	}, "Wrote GeoJSON"); err != nil {
		return fmt.Errorf("error writing GeoJSON output: %w", err)
	}
	return nil
}

// PrintTableRows outputs compact risk table rows.
func PrintTableRows(rows []schema.TableRow, warning string, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONTableRows(w, rows, warning)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVTableRows(w, rows, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRiskTable(w, rows, warning, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writePredictionsTable generates and writes the human-readable prediction table.
func writePredictionsTable(w io.Writer, result *schema.PredictionResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Lake", "Region", "Adjusted", "Risk", "Presence"}
	if cfg.Detail {
		headers = append(headers, "Raw", "Similarity")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, p := range result.Predictions {
		row := []string{
			strconv.Itoa(i + 1),
			schema.TruncateName(p.LakeName, nameWidth),
			p.Region,
			fmtFloat(p.AdjustedScore),
			riskLabel(p.RiskLevel, cfg),
			presenceLabel(p.Presence, cfg),
		}
		if cfg.Detail {
			row = append(row, fmtFloat(p.RawScore), fmtFloat(p.Similarity))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	high := 0
	for _, p := range result.Predictions {
		if p.RiskLevel == schema.HighRisk {
			high++
		}
	}
	summary := fmt.Sprintf("Showing %d lakes for %s (high risk: %d). Scored in %v with %d workers. Cache backend: %s",
		len(result.Predictions), result.Species, high, duration, cfg.Workers, cfg.CacheBackend)
	return writeFooter(w, cfg, result.Warning, summary)
}

// writeRiskTable generates and writes the compact risk table.
func writeRiskTable(w io.Writer, rows []schema.TableRow, warning string, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Lake", "Region", "Score", "Risk", "Presence"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			schema.TruncateName(r.Lake, nameWidth),
			r.Region,
			fmtFloat(r.Score),
			riskLabel(r.RiskLevel, cfg),
			presenceLabel(r.Presence, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	return writeFooter(w, cfg, warning, fmt.Sprintf("Showing %d lakes. Scored in %v.", len(rows), duration))
}
