package cmd

import (
	"github.com/huangsam/lakerisk/core"
	"github.com/spf13/cobra"
)

// predictCmd scores a species against every lake.
var predictCmd = &cobra.Command{
	Use:   "predict [species]",
	Short: "Rank every lake by invasion risk for a species.",
	Long: `Score a species against every reference lake under the given water conditions.

For each lake the classifier produces a raw probability, which is scaled by how
similar the input conditions are to that lake's baseline. Lakes are ranked by the
adjusted score (or the raw score with --order raw), and each one gets a risk level
and whether the species has been observed there.

A warning is attached when the conditions differ significantly from every lake.

Examples:
  # Score Nile tilapia under the default conditions
  lakerisk predict "Oreochromis niloticus"

  # Score against Lake Taal's conditions and show the top 5
  lakerisk predict -s "Cyprinus carpio" --ph 8.32 --salinity 0.85 --do 5.61 \
    --bod 3.82 --turbidity 28 --temperature 25.5 --limit 5

  # Include raw score and similarity columns
  lakerisk predict "Clarias batrachus" --detail

  # Export predictions to Parquet
  lakerisk predict "Chanos chanos" --output parquet --output-file chanos.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecutePredict, "Cannot score lakes"),
}

// geojsonCmd scores a species and emits a FeatureCollection.
var geojsonCmd = &cobra.Command{
	Use:   "geojson [species]",
	Short: "Emit lake risk as a GeoJSON FeatureCollection.",
	Long: `Score a species and emit every lake as a GeoJSON Point feature.

Each feature carries the lake name, region, adjusted probability, percentage,
risk category, raw score, similarity, presence and species. The output is
always GeoJSON regardless of --output.

Examples:
  # Write a map layer for Nile tilapia
  lakerisk geojson "Oreochromis niloticus" --output-file tilapia.geojson`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteGeoJSON, "Cannot build GeoJSON"),
}

// tableCmd scores a species and emits compact rows.
var tableCmd = &cobra.Command{
	Use:   "table [species]",
	Short: "Show a compact risk table (lake, region, score, risk, presence).",
	Long: `Score a species and print one compact row per lake.

Examples:
  # Print the risk table as CSV
  lakerisk table "Pterygoplichthys disjunctivus" --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteTable, "Cannot build risk table"),
}

// rankCmd ranks every species by its best lake.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank every species by its highest-risk lake.",
	Long: `Score every species against every lake under the given conditions and rank
species by their single highest adjusted score.

Examples:
  # Top 10 species under warm, turbid conditions
  lakerisk rank --temperature 30 --turbidity 40 --top 10`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteRank, "Cannot rank species"),
}
