package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/lakerisk/core"
	"github.com/huangsam/lakerisk/internal/classifier"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/iocache"
	"github.com/huangsam/lakerisk/internal/metrics"
	"github.com/huangsam/lakerisk/internal/reference"
	"github.com/huangsam/lakerisk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// engine is the scoring engine built by sharedSetup.
var engine *core.Engine

// recorder collects Prometheus metrics for the current process.
var recorder *metrics.Recorder

// environmentFlags are the flags that make up the environment vector.
var environmentFlags = []string{"ph", "salinity", "do", "bod", "turbidity", "temperature"}

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	// Start CPU profiling
	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	// Write memory profile
	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "lakerisk",
	Short:              "Score the invasion risk of fish species across reference lakes.",
	Long:               `Lakerisk combines a trained classifier with lake baselines to show which lakes a species is most likely to invade.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setConfigSearch points Viper at the config file.
func setConfigSearch() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".lakerisk") // Name of config file (without extension)
	viper.SetConfigType("yaml")      // We'll use YAML format
	viper.AddConfigPath(".")         // Look in the current directory
	viper.AddConfigPath("$HOME")     // Look in the home directory
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSearch()

	// Set environment variable prefix
	viper.SetEnvPrefix("LAKERISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("ph", contract.DefaultPH)
	viper.SetDefault("salinity", contract.DefaultSalinity)
	viper.SetDefault("do", contract.DefaultDissolvedOxygen)
	viper.SetDefault("bod", contract.DefaultBOD)
	viper.SetDefault("turbidity", contract.DefaultTurbidity)
	viper.SetDefault("temperature", contract.DefaultTemperature)
	viper.SetDefault("order", schema.AdjustedOrder)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("top", contract.DefaultTopSpecies)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("runs-backend", "")
	viper.SetDefault("runs-db-connect", "")
	viper.SetDefault("emoji", "no")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation and builds the scoring engine.
func sharedSetup(ctx context.Context, cmd *cobra.Command, args []string) error {
	// Handle profiling flag
	profilePrefix := viper.GetString("profile")
	if err := contract.ProcessProfilingConfig(profile, profilePrefix); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments and explicit flags (which Viper doesn't do).
	if len(args) == 1 {
		input.SpeciesArg = args[0]
	}
	input.Changed = make(map[string]bool, len(environmentFlags))
	for _, name := range environmentFlags {
		input.Changed[name] = cmd.Flags().Changed(name)
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	// 6. Load reference data and the classifier, then build the engine.
	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	engine = eng

	return nil
}

// buildEngine loads the configured reference data and classifier.
func buildEngine(ctx context.Context, cfg *contract.Config) (*core.Engine, error) {
	var ref *reference.Store
	var err error
	if cfg.ReferenceFile != "" {
		ref, err = reference.LoadFile(cfg.ReferenceFile)
	} else {
		ref, err = reference.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	var clf contract.Classifier
	switch {
	case cfg.ModelURL != "":
		clf, err = classifier.NewRemoteClient(ctx, cfg.ModelURL, cfg.ModelTimeout)
	case cfg.ModelFile != "":
		clf, err = classifier.LoadFile(cfg.ModelFile)
	default:
		clf, err = classifier.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	recorder = metrics.New()
	return core.NewEngine(ref, clf, core.Options{
		Cache:   cacheManager,
		Metrics: recorder,
		Workers: cfg.Workers,
	})
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// runEngine adapts an executor into a cobra Run function.
// Metrics are written after a successful run when --metrics-file is set.
func runEngine(exec core.ExecutorFunc, failure string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, engine); err != nil {
			contract.LogFatal(failure, err)
		}
		writeMetrics()
	}
}

// writeMetrics exports the process metrics in textfile collector format.
func writeMetrics() {
	if cfg.MetricsFile == "" || recorder == nil {
		return
	}
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		contract.LogWarn("Cannot write metrics file", err)
	}
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigSearch()

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
