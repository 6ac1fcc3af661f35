package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/lakerisk/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 0 // all lakes
	MaxResultLimit      = 1000
	DefaultTopSpecies   = 20
	DefaultPrecision    = 3
	MaxPrecision        = 4
	DefaultModelTimeout = 30 * time.Second
)

// Default environment inputs, used when a parameter is not supplied.
const (
	DefaultPH              = 7.5
	DefaultSalinity        = 0.5
	DefaultDissolvedOxygen = 6.0
	DefaultBOD             = 2.0
	DefaultTurbidity       = 10.0
	DefaultTemperature     = 27.0
)

// AttributionCacheTTL is how long a persisted attribution stays valid.
const AttributionCacheTTL = 30 * 24 * time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// EnvironmentRawInput holds optional environment defaults from the YAML config file.
type EnvironmentRawInput struct {
	PH              *float64 `mapstructure:"ph"`
	Salinity        *float64 `mapstructure:"salinity"`
	DissolvedOxygen *float64 `mapstructure:"do"`
	BOD             *float64 `mapstructure:"bod"`
	Turbidity       *float64 `mapstructure:"turbidity"`
	Temperature     *float64 `mapstructure:"temperature"`
}

// Config holds the runtime configuration for scoring.
// This struct remains the "final, validated" config.
type Config struct {
	Species     string
	Env         schema.EnvironmentVector
	Order       schema.RankOrder
	ResultLimit int // 0 keeps every lake
	TopSpecies  int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Width       int // Terminal width override (0 = auto-detect)

	ModelFile     string
	ModelURL      string
	ModelTimeout  time.Duration
	ReferenceFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	MetricsFile string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SpeciesArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Species         string  `mapstructure:"species"`
	PH              float64 `mapstructure:"ph"`
	Salinity        float64 `mapstructure:"salinity"`
	DissolvedOxygen float64 `mapstructure:"do"`
	BOD             float64 `mapstructure:"bod"`
	Turbidity       float64 `mapstructure:"turbidity"`
	Temperature     float64 `mapstructure:"temperature"`
	Order           string  `mapstructure:"order"`
	Limit           int     `mapstructure:"limit"`
	Top             int     `mapstructure:"top"`
	Workers         int     `mapstructure:"workers"`
	Precision       int     `mapstructure:"precision"`
	Output          string  `mapstructure:"output"`
	OutputFile      string  `mapstructure:"output-file"`
	Detail          bool    `mapstructure:"detail"`
	Width           int     `mapstructure:"width"`
	ModelFile       string  `mapstructure:"model-file"`
	ModelURL        string  `mapstructure:"model-url"`
	ModelTimeout    string  `mapstructure:"model-timeout"`
	ReferenceFile   string  `mapstructure:"reference-file"`
	CacheBackend    string  `mapstructure:"cache-backend"`
	CacheDBConnect  string  `mapstructure:"cache-db-connect"`
	RunsBackend     string  `mapstructure:"runs-backend"`
	RunsDBConnect   string  `mapstructure:"runs-db-connect"`
	MetricsFile     string  `mapstructure:"metrics-file"`
	Emoji           string  `mapstructure:"emoji"`
	Color           string  `mapstructure:"color"`

	// --- Environment overrides from config file ---
	Environment EnvironmentRawInput `mapstructure:"environment"`

	// Changed records which environment flags were set explicitly on the command line.
	Changed map[string]bool `mapstructure:"-"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithEnvironment creates a copy of the Config with a different species and environment.
func (c *Config) CloneWithEnvironment(species string, env schema.EnvironmentVector) *Config {
	clone := c.Clone()
	clone.Species = species
	clone.Env = env
	return clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEnvironment(cfg, input); err != nil {
		return err
	}
	if err := processModelSource(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run-tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Cache and runs must use separate SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-environment fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile
	cfg.ReferenceFile = input.ReferenceFile

	cfg.Species = strings.TrimSpace(input.Species)
	if input.SpeciesArg != "" {
		cfg.Species = strings.TrimSpace(input.SpeciesArg)
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Limits ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Top <= 0 || input.Top > MaxResultLimit {
		return fmt.Errorf("top must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Top)
	}
	cfg.TopSpecies = input.Top

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Order Validation ---
	cfg.Order = schema.RankOrder(strings.ToLower(input.Order))
	if cfg.Order == "" {
		cfg.Order = schema.AdjustedOrder
	}
	if _, ok := schema.ValidRankOrders[cfg.Order]; !ok {
		return fmt.Errorf("invalid order '%s'. must be adjusted, raw", input.Order)
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when using parquet output")
	}

	return nil
}

// processEnvironment builds the environment vector. Explicit flags win over
// config-file values, which win over flag defaults.
func processEnvironment(cfg *Config, input *ConfigRawInput) error {
	pick := func(flag string, flagValue float64, fileValue *float64) float64 {
		if input.Changed[flag] || fileValue == nil {
			return flagValue
		}
		return *fileValue
	}

	cfg.Env = schema.EnvironmentVector{
		PH:              pick("ph", input.PH, input.Environment.PH),
		Salinity:        pick("salinity", input.Salinity, input.Environment.Salinity),
		DissolvedOxygen: pick("do", input.DissolvedOxygen, input.Environment.DissolvedOxygen),
		BOD:             pick("bod", input.BOD, input.Environment.BOD),
		Turbidity:       pick("turbidity", input.Turbidity, input.Environment.Turbidity),
		Temperature:     pick("temperature", input.Temperature, input.Environment.Temperature),
	}
	if err := cfg.Env.Validate(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// processModelSource validates the classifier source settings.
func processModelSource(cfg *Config, input *ConfigRawInput) error {
	cfg.ModelFile = strings.TrimSpace(input.ModelFile)
	cfg.ModelURL = strings.TrimRight(strings.TrimSpace(input.ModelURL), "/")
	if cfg.ModelFile != "" && cfg.ModelURL != "" {
		return fmt.Errorf("--model-file and --model-url cannot be used together")
	}
	if cfg.ModelURL != "" && !strings.HasPrefix(cfg.ModelURL, "http://") && !strings.HasPrefix(cfg.ModelURL, "https://") {
		return fmt.Errorf("model-url must start with http:// or https:// (received %q)", input.ModelURL)
	}

	cfg.ModelTimeout = DefaultModelTimeout
	if input.ModelTimeout != "" {
		d, err := time.ParseDuration(input.ModelTimeout)
		if err != nil {
			return fmt.Errorf("invalid model-timeout '%s': %w", input.ModelTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("model-timeout must be positive (received %s)", d)
		}
		cfg.ModelTimeout = d
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
