package core

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/reference"
	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/require"
)

// taalEnv is the Lake Taal baseline from the embedded reference data.
var taalEnv = schema.EnvironmentVector{PH: 8.32, Salinity: 0.85, DissolvedOxygen: 5.61, BOD: 3.82, Turbidity: 28.0, Temperature: 25.5}

// farEnv is far from every lake baseline.
var farEnv = schema.EnvironmentVector{PH: 1, Salinity: 40, DissolvedOxygen: 0, BOD: 80, Turbidity: 900, Temperature: 45}

// stubClassifier scores rows with a pure function of the row.
type stubClassifier struct {
	prob        func(r schema.ClassifierRow) float64
	importances map[string]float64
	columns     []string
	calls       atomic.Int32
}

func newStubClassifier() *stubClassifier {
	return &stubClassifier{
		prob: func(r schema.ClassifierRow) float64 {
			// Deterministic, lake-dependent and inside (0,1)
			return 0.2 + 0.05*float64(len(r.WaterbodyName)%10) + 0.01*r.TempInPrefRange
		},
		importances: map[string]float64{
			"num__input_ph":        0.30,
			"num__wb_salinity_max": 0.10,
			"num__input_do":        0.05,
			"num__input_bod":       0.05,
			"num__input_turbidity": 0.10,
			"num__input_temp":      0.20,
			"cat__status_Invasive": 0.20,
		},
		columns: []string{"species", "status", "input_ph", "input_temp", "waterbody_name"},
	}
}

func (s *stubClassifier) Predict(ctx context.Context, rows []schema.ClassifierRow) ([]float64, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = s.prob(r)
	}
	return out, nil
}

func (s *stubClassifier) FeatureImportances() map[string]float64 {
	out := make(map[string]float64, len(s.importances))
	for k, v := range s.importances {
		out[k] = v
	}
	return out
}

func (s *stubClassifier) InputColumns() []string { return s.columns }

func (s *stubClassifier) Describe() schema.ModelInfo {
	return schema.ModelInfo{Name: "stub", Version: "1.0.0", Source: "test", Checksum: "abc123", FeatureCount: len(s.importances)}
}

// newTestEngine builds an engine over the embedded reference data.
func newTestEngine(t testing.TB, clf contract.Classifier, opts Options) *Engine {
	t.Helper()
	ref, err := reference.Default()
	require.NoError(t, err)
	eng, err := NewEngine(ref, clf, opts)
	require.NoError(t, err)
	return eng
}
