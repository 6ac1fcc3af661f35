package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// printByFormat dispatches the three formats shared by the reference views.
func printByFormat(cfg *contract.Config, jsonFn, csvFn, textFn func(io.Writer) error) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, jsonFn, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, csvFn, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, textFn, "Wrote text")
	}
	return nil
}

// PrintOverview outputs the reference data and model summary.
func PrintOverview(ov schema.Overview, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return printByFormat(cfg,
		func(w io.Writer) error { return writeJSON(w, ov) },
		func(w io.Writer) error { return writeCSVOverview(w, ov, fmtFloat) },
		func(w io.Writer) error { return writeOverviewText(w, ov, cfg, fmtFloat) },
	)
}

// PrintSpeciesList outputs every species name.
func PrintSpeciesList(names []string, cfg *contract.Config) error {
	if names == nil {
		names = []string{}
	}
	return printByFormat(cfg,
		func(w io.Writer) error { return writeJSON(w, names) },
		func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"species"}, func(cw *csv.Writer) error {
				for _, n := range names {
					if err := cw.Write([]string{n}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func(w io.Writer) error {
			for _, n := range names {
				if _, err := fmt.Fprintln(w, n); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "%d species\n", len(names))
			return err
		},
	)
}

// PrintSpeciesInfo outputs the descriptive summary of one species.
func PrintSpeciesInfo(info schema.SpeciesInfo, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	pairs := [][]string{
		{"species", info.Species},
		{"common_name", info.CommonName},
		{"family", info.Family},
		{"order", info.Order},
		{"status", info.Status},
		{"feeding_type", info.FeedingType},
		{"trophic_level", fmtFloat(info.TrophicLevel)},
		{"temperature_min", fmtFloat(info.TemperatureRange.Min)},
		{"temperature_max", fmtFloat(info.TemperatureRange.Max)},
		{"length_max", fmtFloat(info.LengthMax)},
		{"weight_max", fmtFloat(info.WeightMax)},
		{"records_count", strconv.Itoa(info.RecordsCount)},
	}
	return printByFormat(cfg,
		func(w io.Writer) error { return writeJSON(w, info) },
		func(w io.Writer) error { return writeCSVPairs(w, pairs) },
		func(w io.Writer) error { return writePairsTable(w, pairs) },
	)
}

// PrintLakes outputs lake baselines.
func PrintLakes(lakes []schema.LakeBaseline, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	if lakes == nil {
		lakes = []schema.LakeBaseline{}
	}
	return printByFormat(cfg,
		func(w io.Writer) error { return writeJSON(w, lakes) },
		func(w io.Writer) error { return writeCSVLakes(w, lakes, fmtFloat) },
		func(w io.Writer) error { return writeLakesTable(w, lakes, cfg, fmtFloat) },
	)
}

// PrintRanking outputs species ranked by their best lake.
func PrintRanking(rankings []schema.SpeciesRanking, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	if rankings == nil {
		rankings = []schema.SpeciesRanking{}
	}
	return printByFormat(cfg,
		func(w io.Writer) error { return writeJSON(w, rankings) },
		func(w io.Writer) error { return writeCSVRanking(w, rankings, fmtFloat) },
		func(w io.Writer) error { return writeRankingTable(w, rankings, cfg, fmtFloat, duration) },
	)
}

func writeOverviewText(w io.Writer, ov schema.Overview, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := "Lake Invasion Risk Overview"
	if cfg.UseEmojis {
		title = "🌊 " + title
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", title); err != nil {
		return err
	}
	pairs := overviewPairs(ov, fmtFloat)
	return writePairsTable(w, pairs)
}

// overviewPairs flattens the overview into ordered key/value rows.
func overviewPairs(ov schema.Overview, fmtFloat func(float64) string) [][]string {
	pairs := [][]string{
		{"total_species", strconv.Itoa(ov.TotalSpecies)},
		{"total_records", strconv.Itoa(ov.TotalRecords)},
		{"total_lakes", strconv.Itoa(ov.TotalLakes)},
		{"model", ov.Model.Name + " " + ov.Model.Version},
		{"model_source", ov.Model.Source},
		{"model_features", strconv.Itoa(ov.Model.FeatureCount)},
		{"most_contributing", string(ov.MostContributing.Parameter)},
		{"most_contributing_pct", fmtFloat(ov.MostContributing.Percentage)},
	}
	statuses := make([]string, 0, len(ov.StatusDistribution))
	for s := range ov.StatusDistribution {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		pairs = append(pairs, []string{"status_" + s, strconv.Itoa(ov.StatusDistribution[s])})
	}
	return pairs
}

func writeCSVOverview(w io.Writer, ov schema.Overview, fmtFloat func(float64) string) error {
	return writeCSVPairs(w, overviewPairs(ov, fmtFloat))
}

// writeCSVPairs writes key/value rows under a field,value header.
func writeCSVPairs(w io.Writer, pairs [][]string) error {
	return writeCSVWithHeader(w, []string{"field", "value"}, func(cw *csv.Writer) error {
		for _, p := range pairs {
			if err := cw.Write(p); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePairsTable renders key/value rows as a two-column table.
func writePairsTable(w io.Writer, pairs [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	if err := table.Bulk(pairs); err != nil {
		return err
	}
	return table.Render()
}

func writeLakesTable(w io.Writer, lakes []schema.LakeBaseline, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Lake", "Region", "pH", "Salinity", "DO", "BOD", "Turbidity", "Temp"}
	if cfg.Detail {
		headers = append(headers, "Lat", "Lon", "Aliases")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(lakes))
	for _, l := range lakes {
		row := []string{schema.TruncateName(l.Name, nameWidth), l.Region}
		for _, v := range l.Env.Slice() {
			row = append(row, fmtFloat(v))
		}
		if cfg.Detail {
			row = append(row,
				strconv.FormatFloat(l.Latitude, 'f', -1, 64),
				strconv.FormatFloat(l.Longitude, 'f', -1, 64),
				strconv.Itoa(len(l.Aliases)),
			)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCSVLakes(w io.Writer, lakes []schema.LakeBaseline, fmtFloat func(float64) string) error {
	header := []string{"lake", "region", "ph", "salinity", "dissolved_oxygen", "bod", "turbidity", "temperature", "latitude", "longitude"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, l := range lakes {
			rec := []string{l.Name, l.Region}
			for _, v := range l.Env.Slice() {
				rec = append(rec, fmtFloat(v))
			}
			rec = append(rec,
				strconv.FormatFloat(l.Latitude, 'f', -1, 64),
				strconv.FormatFloat(l.Longitude, 'f', -1, 64),
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRankingTable(w io.Writer, rankings []schema.SpeciesRanking, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Species", "Common Name", "Status", "Top Lake", "Adjusted", "Risk"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(rankings))
	for i, r := range rankings {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			schema.TruncateName(r.Species, nameWidth),
			r.CommonName,
			r.Status,
			schema.TruncateName(r.TopLake, nameWidth),
			fmtFloat(r.AdjustedScore),
			riskLabel(r.RiskLevel, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	return writeFooter(w, cfg, "", fmt.Sprintf("Ranked %d species in %v with %d workers.", len(rankings), duration, cfg.Workers))
}

func writeCSVRanking(w io.Writer, rankings []schema.SpeciesRanking, fmtFloat func(float64) string) error {
	header := []string{"rank", "species", "common_name", "family", "status", "top_lake", "adjusted_score", "risk_level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rankings {
			rec := []string{strconv.Itoa(i + 1), r.Species, r.CommonName, r.Family, r.Status, r.TopLake, fmtFloat(r.AdjustedScore), string(r.RiskLevel)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
