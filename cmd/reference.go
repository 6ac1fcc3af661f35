package cmd

import (
	"context"

	"github.com/huangsam/lakerisk/core"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/spf13/cobra"
)

// importanceCmd displays the classifier's feature attribution.
var importanceCmd = &cobra.Command{
	Use:   "importance",
	Short: "Show which water-quality parameters drive the model",
	Long: `Aggregate the classifier's feature importances into the six water-quality
parameters (pH, salinity, dissolved oxygen, BOD, turbidity, temperature).

Features that map to no parameter are reported as unmatched. The result is
cached per model artifact, so repeated calls are cheap.

Examples:
  # Show the parameter summary
  lakerisk importance

  # Include the top-50 per-feature breakdown
  lakerisk importance --detail`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteImportance, "Cannot compute feature importance"),
}

// overviewCmd summarizes the reference data and model.
var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarize reference data and the loaded model",
	Long: `Show the number of species, presence records and lakes, the loaded model,
the distribution of species by status, and the most contributing parameter.

Examples:
  lakerisk overview
  lakerisk overview --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteOverview, "Cannot build overview"),
}

// speciesCmd lists species or shows one.
var speciesCmd = &cobra.Command{
	Use:   "species [name]",
	Short: "List all species, or show one species' details",
	Long: `Without an argument, list every known species in sorted order.
With a scientific name, show its common name, family, order, status, feeding type,
trophic level, temperature range, size limits and observation count.

Examples:
  lakerisk species
  lakerisk species "Oreochromis niloticus"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteSpecies, "Cannot show species"),
}

// lakesCmd lists every lake baseline.
var lakesCmd = &cobra.Command{
	Use:   "lakes",
	Short: "List every reference lake and its baseline conditions",
	Long: `List each lake's region, baseline water conditions and coordinates.

Examples:
  lakerisk lakes
  lakerisk lakes --detail --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runEngine(core.ExecuteLakes, "Cannot list lakes"),
}

// lakeCmd shows one lake by name or alias.
var lakeCmd = &cobra.Command{
	Use:   "lake <name>",
	Short: "Show one lake by name or alias",
	Long: `Look up a lake by its canonical name or a known alias such as "Taal Lake".

Examples:
  lakerisk lake "Lake Taal"
  lakerisk lake "Laguna de Bay (East Bay)"`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// The positional argument is a lake, not a species
		return sharedSetup(rootCtx, cmd, nil)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runEngine(func(ctx context.Context, cfg *contract.Config, eng *core.Engine) error {
			return core.ExecuteLake(ctx, cfg, eng, args[0])
		}, "Cannot show lake")(cmd, args)
	},
}
