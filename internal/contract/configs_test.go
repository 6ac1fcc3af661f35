package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRawInput returns the flag defaults as cobra would supply them.
func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Species:         "Oreochromis niloticus",
		PH:              DefaultPH,
		Salinity:        DefaultSalinity,
		DissolvedOxygen: DefaultDissolvedOxygen,
		BOD:             DefaultBOD,
		Turbidity:       DefaultTurbidity,
		Temperature:     DefaultTemperature,
		Order:           "adjusted",
		Limit:           DefaultResultLimit,
		Top:             DefaultTopSpecies,
		Workers:         4,
		Precision:       DefaultPrecision,
		Output:          "text",
		CacheBackend:    "none",
		Emoji:           "no",
		Color:           "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid defaults"},
		{name: "positional species wins", mutate: func(in *ConfigRawInput) { in.SpeciesArg = "Channa striata" }},
		{name: "raw order", mutate: func(in *ConfigRawInput) { in.Order = "RAW" }},
		{name: "empty order defaults to adjusted", mutate: func(in *ConfigRawInput) { in.Order = "" }},
		{name: "invalid order", mutate: func(in *ConfigRawInput) { in.Order = "similarity" }, expectError: "invalid order"},
		{name: "negative limit", mutate: func(in *ConfigRawInput) { in.Limit = -1 }, expectError: "limit must be between 0 and 1000 (received -1)"},
		{name: "limit too high", mutate: func(in *ConfigRawInput) { in.Limit = 1001 }, expectError: "limit must be between"},
		{name: "zero top", mutate: func(in *ConfigRawInput) { in.Top = 0 }, expectError: "top must be greater than 0"},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers must be greater than 0"},
		{name: "precision too low", mutate: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: "precision must be between 1 and 4"},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: "precision must be between 1 and 4"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: "--output-file is required"},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "invalid --color value"},
		{name: "model file and url", mutate: func(in *ConfigRawInput) { in.ModelFile = "m.json"; in.ModelURL = "http://x" }, expectError: "cannot be used together"},
		{name: "model url scheme", mutate: func(in *ConfigRawInput) { in.ModelURL = "ftp://model" }, expectError: "model-url must start with"},
		{name: "model timeout", mutate: func(in *ConfigRawInput) { in.ModelTimeout = "5s" }},
		{name: "bad model timeout", mutate: func(in *ConfigRawInput) { in.ModelTimeout = "soon" }, expectError: "invalid model-timeout"},
		{name: "negative model timeout", mutate: func(in *ConfigRawInput) { in.ModelTimeout = "-1s" }, expectError: "model-timeout must be positive"},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "invalid cache backend"},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: "connection string is required"},
		{name: "invalid runs backend", mutate: func(in *ConfigRawInput) { in.RunsBackend = "mongo" }, expectError: "invalid runs backend"},
		{
			name: "runs postgres",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "postgresql"
				in.RunsDBConnect = "host=localhost port=5432 dbname=lakerisk"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateFields(t *testing.T) {
	input := validRawInput()
	input.SpeciesArg = "  Channa striata "
	input.Order = "RAW"
	input.ModelURL = "http://localhost:8000/"
	input.ModelTimeout = "2s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "Channa striata", cfg.Species)
	assert.Equal(t, schema.RawOrder, cfg.Order)
	assert.Equal(t, "http://localhost:8000", cfg.ModelURL)
	assert.Equal(t, 2*time.Second, cfg.ModelTimeout)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.RunsBackend)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.Equal(t, schema.EnvironmentVector{PH: 7.5, Salinity: 0.5, DissolvedOxygen: 6, BOD: 2, Turbidity: 10, Temperature: 27}, cfg.Env)
}

func TestProcessEnvironmentPrecedence(t *testing.T) {
	filePH, fileTemp := 8.3, 25.5

	input := validRawInput()
	input.Environment = EnvironmentRawInput{PH: &filePH, Temperature: &fileTemp}
	input.Temperature = 30
	input.Changed = map[string]bool{"temperature": true}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, 8.3, cfg.Env.PH, "config file beats flag default")
	assert.Equal(t, 30.0, cfg.Env.Temperature, "explicit flag beats config file")
	assert.Equal(t, DefaultSalinity, cfg.Env.Salinity, "flag default when nothing else is set")
}

func TestSQLiteBackendsMustDiffer(t *testing.T) {
	shared := filepath.Join(t.TempDir(), "shared.db")

	input := validRawInput()
	input.CacheBackend = "sqlite"
	input.CacheDBConnect = shared
	input.RunsBackend = "sqlite"
	input.RunsDBConnect = shared

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")

	input.RunsDBConnect = filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/lakerisk", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/lakerisk", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=lakerisk", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloneWithEnvironment(t *testing.T) {
	cfg := &Config{Species: "A", Workers: 3}
	env := schema.EnvironmentVector{PH: 7}
	clone := cfg.CloneWithEnvironment("B", env)

	assert.Equal(t, "A", cfg.Species)
	assert.Equal(t, "B", clone.Species)
	assert.Equal(t, env, clone.Env)
	assert.Equal(t, 3, clone.Workers)
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(&profile, "lakerisk"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "lakerisk", profile.Prefix)
}
