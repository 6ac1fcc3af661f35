// Package cmd defines the command-line interface for lakerisk.
package cmd

import (
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(geojsonCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(importanceCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(speciesCmd)
	rootCmd.AddCommand(lakesCmd)
	rootCmd.AddCommand(lakeCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("species", "s", "", "Scientific name of the species to score")
	rootCmd.PersistentFlags().Float64("ph", contract.DefaultPH, "Water pH (0-14)")
	rootCmd.PersistentFlags().Float64("salinity", contract.DefaultSalinity, "Salinity in ppt")
	rootCmd.PersistentFlags().Float64("do", contract.DefaultDissolvedOxygen, "Dissolved oxygen in mg/L")
	rootCmd.PersistentFlags().Float64("bod", contract.DefaultBOD, "Biochemical oxygen demand in mg/L")
	rootCmd.PersistentFlags().Float64("turbidity", contract.DefaultTurbidity, "Turbidity in NTU")
	rootCmd.PersistentFlags().Float64("temperature", contract.DefaultTemperature, "Water temperature in °C")
	rootCmd.PersistentFlags().Bool("detail", false, "Print raw score and similarity, or the per-feature breakdown")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of lakes to display (0 = all)")
	rootCmd.PersistentFlags().Int("top", contract.DefaultTopSpecies, "Number of species to display when ranking")
	rootCmd.PersistentFlags().String("order", string(schema.AdjustedOrder), "Ranking order: adjusted or raw")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("model-file", "", "Path to a classifier artifact (defaults to the embedded model)")
	rootCmd.PersistentFlags().String("model-url", "", "Base URL of a remote classifier service")
	rootCmd.PersistentFlags().String("model-timeout", contract.DefaultModelTimeout.String(), "Timeout for remote classifier requests")
	rootCmd.PersistentFlags().String("reference-file", "", "Path to a YAML reference data file (defaults to the embedded data)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (SQLite files must differ from the cache file)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this file after each run")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in run headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
