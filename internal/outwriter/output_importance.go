package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintImportance outputs the feature attribution and the most contributing parameter.
func PrintImportance(attr schema.FeatureAttribution, most schema.MostContributing, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONImportance(w, attr, most)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVImportance(w, attr, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeImportanceText(w, attr, most, cfg, fmtFloat)
		}, "Wrote text")
	}
	return nil
}

// writeImportanceText prints the six parameters, the unmatched bucket and,
// with --detail, the per-feature breakdown.
func writeImportanceText(w io.Writer, attr schema.FeatureAttribution, most schema.MostContributing, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := "Feature Importance by Parameter"
	if cfg.UseEmojis {
		title = "📊 " + title
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Parameter", "Importance", "Features", "Percentage"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(attr.Parameters)+1)
	for _, p := range attr.Parameters {
		data = append(data, []string{
			string(p.Parameter),
			fmtFloat(p.TotalImportance),
			strconv.Itoa(p.FeatureCount),
			fmtFloat(p.Percentage) + "%",
		})
	}
	data = append(data, []string{
		string(schema.UnmatchedParameter),
		fmtFloat(attr.Unmatched.TotalImportance),
		strconv.Itoa(attr.Unmatched.FeatureCount),
		fmtFloat(attr.Unmatched.Percentage) + "%",
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Most contributing: %s (%s%%) across %d features\n",
		most.Parameter, fmtFloat(most.Percentage), attr.TotalFeatures); err != nil {
		return err
	}

	if !cfg.Detail || len(attr.Detailed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nTop %d features\n", len(attr.Detailed)); err != nil {
		return err
	}
	detail := tablewriter.NewWriter(w)
	detail.Header([]string{"Feature", "Parameter", "Importance", "Percentage"})
	rows := make([][]string, 0, len(attr.Detailed))
	for _, f := range attr.Detailed {
		rows = append(rows, []string{
			f.Feature,
			string(f.Parameter),
			fmtFloat(f.Importance),
			fmtFloat(f.Percentage) + "%",
		})
	}
	if err := detail.Bulk(rows); err != nil {
		return err
	}
	return detail.Render()
}

// writeJSONImportance writes the attribution with the most contributing parameter attached.
func writeJSONImportance(w io.Writer, attr schema.FeatureAttribution, most schema.MostContributing) error {
	return writeJSON(w, struct {
		schema.FeatureAttribution
		MostContributing schema.MostContributing `json:"most_contributing"`
	}{attr, most})
}

// writeCSVImportance writes one row per parameter plus the unmatched bucket.
func writeCSVImportance(w io.Writer, attr schema.FeatureAttribution, fmtFloat func(float64) string) error {
	header := []string{"parameter", "total_importance", "feature_count", "percentage"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range attr.Parameters {
			if err := cw.Write([]string{string(p.Parameter), fmtFloat(p.TotalImportance), strconv.Itoa(p.FeatureCount), fmtFloat(p.Percentage)}); err != nil {
				return err
			}
		}
		u := attr.Unmatched
		return cw.Write([]string{string(schema.UnmatchedParameter), fmtFloat(u.TotalImportance), strconv.Itoa(u.FeatureCount), fmtFloat(u.Percentage)})
	})
}
