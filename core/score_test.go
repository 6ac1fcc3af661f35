package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/internal/classifier"
	"github.com/huangsam/lakerisk/internal/iocache"
	"github.com/huangsam/lakerisk/internal/metrics"
	"github.com/huangsam/lakerisk/internal/reference"
	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScoreAllLakesBasic(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{Workers: 4})

	result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "Oreochromis niloticus", result.Species)
	assert.Equal(t, taalEnv, result.Input)
	assert.Empty(t, result.Warning)
	require.Len(t, result.Predictions, 13)

	seen := make(map[string]bool)
	for i, p := range result.Predictions {
		assert.False(t, seen[p.LakeName], "duplicate lake %s", p.LakeName)
		seen[p.LakeName] = true

		assert.LessOrEqual(t, p.AdjustedScore, p.RawScore)
		assert.Greater(t, p.Similarity, 0.0)
		assert.LessOrEqual(t, p.Similarity, 1.0)
		assert.Equal(t, algo.Categorize(p.AdjustedScore), p.RiskLevel)
		if i > 0 {
			prev := result.Predictions[i-1]
			assert.True(t, prev.AdjustedScore > p.AdjustedScore ||
				(prev.AdjustedScore == p.AdjustedScore && prev.LakeName < p.LakeName),
				"records must be sorted by adjusted score then lake name")
		}
	}
}

func TestScoreAllLakesIdenticalEnvironment(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})

	result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{})
	require.NoError(t, err)

	var taal *schema.PredictionRecord
	for i := range result.Predictions {
		if result.Predictions[i].LakeName == "Lake Taal" {
			taal = &result.Predictions[i]
		}
	}
	require.NotNil(t, taal)
	assert.Equal(t, 1.0, taal.Similarity)
	assert.Equal(t, taal.RawScore, taal.AdjustedScore)
	assert.Equal(t, "CALABARZON", taal.Region)
	assert.Equal(t, 14.0, taal.Latitude)
	assert.Equal(t, 120.98, taal.Longitude)
	assert.Equal(t, schema.PresenceYes, taal.Presence)
}

func TestScoreAllLakesPresence(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})

	result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{})
	require.NoError(t, err)

	byLake := make(map[string]schema.Presence)
	for _, p := range result.Predictions {
		byLake[p.LakeName] = p.Presence
	}
	assert.Equal(t, schema.PresenceYes, byLake["Laguna de Bay"])
	assert.Equal(t, schema.PresenceNo, byLake["Lake Danao"])
	assert.Equal(t, schema.PresenceUnknown, byLake["Tikub Lake"])
}

func TestScoreAllLakesFarInput(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})

	result, err := eng.ScoreAllLakes(context.Background(), "Cyprinus carpio", farEnv, ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, FarInputWarning, result.Warning)
	require.Len(t, result.Predictions, 13)
	for _, p := range result.Predictions {
		assert.Equal(t, schema.LowRisk, p.RiskLevel)
		assert.Less(t, p.AdjustedScore, 1e-6)
		assert.Greater(t, p.RawScore, 0.0, "raw scores are unchanged by the warning")
	}
}

func TestScoreAllLakesErrors(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})

	tests := []struct {
		name     string
		species  string
		env      schema.EnvironmentVector
		sentinel error
		kind     ErrorKind
	}{
		{"unknown species", "Nonexistent fish", taalEnv, ErrSpeciesNotFound, KindSpeciesNotFound},
		{"case mismatch", "oreochromis niloticus", taalEnv, ErrSpeciesNotFound, KindSpeciesNotFound},
		{"nan", "Oreochromis niloticus", schema.EnvironmentVector{PH: math.NaN()}, ErrInvalidInput, KindInvalidInput},
		{"inf", "Oreochromis niloticus", schema.EnvironmentVector{Turbidity: math.Inf(1)}, ErrInvalidInput, KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.ScoreAllLakes(context.Background(), tt.species, tt.env, ScoreOptions{})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestScoreAllLakesClassifierFailures(t *testing.T) {
	tests := []struct {
		name   string
		probs  []float64
		err    error
		substr string
	}{
		{name: "adapter error", err: errors.New("model exploded"), substr: "model exploded"},
		{name: "wrong length", probs: []float64{0.5}, substr: "returned 1 probabilities"},
		{name: "nan probability", probs: repeat(math.NaN(), 13), substr: "probability NaN"},
		{name: "above one", probs: repeat(1.5, 13), substr: "probability 1.5"},
		{name: "negative", probs: repeat(-0.1, 13), substr: "probability -0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &classifier.MockClassifier{}
			clf.On("InputColumns").Return([]string{"species"})
			clf.On("Predict", mock.Anything, mock.Anything).Return(tt.probs, tt.err)

			ref, err := reference.Default()
			require.NoError(t, err)
			eng, err := NewEngine(ref, clf, Options{Workers: 1})
			require.NoError(t, err)

			result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{})
			require.Error(t, err)
			assert.Nil(t, result, "no partial results")
			assert.ErrorIs(t, err, ErrPredictionFailed)
			assert.Contains(t, err.Error(), tt.substr)
			clf.AssertExpectations(t)
		})
	}
}

func TestScoreAllLakesOrderAndLimit(t *testing.T) {
	clf := newStubClassifier()
	// Raw score grows with lake name length, so raw and adjusted orders differ
	clf.prob = func(r schema.ClassifierRow) float64 { return float64(len(r.WaterbodyName)) / 20 }
	eng := newTestEngine(t, clf, Options{})

	raw, err := eng.ScoreAllLakes(context.Background(), "Channa striata", taalEnv, ScoreOptions{Order: schema.RawOrder})
	require.NoError(t, err)
	for i := 1; i < len(raw.Predictions); i++ {
		assert.GreaterOrEqual(t, raw.Predictions[i-1].RawScore, raw.Predictions[i].RawScore)
	}

	limited, err := eng.ScoreAllLakes(context.Background(), "Channa striata", taalEnv, ScoreOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, limited.Predictions, 3)

	all, err := eng.ScoreAllLakes(context.Background(), "Channa striata", taalEnv, ScoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, all.Predictions[:3], limited.Predictions)
}

func TestScoreAllLakesIdempotent(t *testing.T) {
	m, err := classifier.Default()
	require.NoError(t, err)
	ref, err := reference.Default()
	require.NoError(t, err)
	eng, err := NewEngine(ref, m, Options{})
	require.NoError(t, err)

	env := schema.EnvironmentVector{PH: 7.5, Salinity: 0.5, DissolvedOxygen: 6, BOD: 2, Turbidity: 10, Temperature: 27}
	first, err := eng.ScoreAllLakes(context.Background(), "Parachromis managuensis", env, ScoreOptions{Workers: 1})
	require.NoError(t, err)
	second, err := eng.ScoreAllLakes(context.Background(), "Parachromis managuensis", env, ScoreOptions{Workers: 8})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Equal(t, first.Warning, second.Warning)
}

func TestScoreAllLakesWorkerChunks(t *testing.T) {
	for _, workers := range []int{1, 2, 5, 13, 64} {
		clf := newStubClassifier()
		eng := newTestEngine(t, clf, Options{})
		result, err := eng.ScoreAllLakes(context.Background(), "Gambusia affinis", taalEnv, ScoreOptions{Workers: workers})
		require.NoError(t, err)
		assert.Len(t, result.Predictions, 13)

		chunk := (13 + workers - 1) / workers
		assert.Equal(t, int32((13+chunk-1)/chunk), clf.calls.Load(), "workers=%d", workers)
	}
}

func TestScoreAllLakesCanceled(t *testing.T) {
	eng := newTestEngine(t, newStubClassifier(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.ScoreAllLakes(ctx, "Gambusia affinis", taalEnv, ScoreOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreAllLakesRunTracking(t *testing.T) {
	runs := &iocache.MockRunStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(runs)

	runs.On("BeginRun", mock.AnythingOfType("string"), "Oreochromis niloticus", taalEnv, mock.Anything).Return(nil)
	runs.On("RecordLakes", mock.AnythingOfType("string"), mock.MatchedBy(func(r []schema.PredictionRecord) bool {
		return len(r) == 13
	}), mock.Anything).Return(nil)
	runs.On("EndRun", mock.AnythingOfType("string"), mock.Anything, 13, false, mock.AnythingOfType("string")).Return(nil)

	eng := newTestEngine(t, newStubClassifier(), Options{Cache: mgr})
	result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Predictions, 2, "tracking keeps every lake while output honors the limit")

	runs.AssertCalled(t, "BeginRun", result.RunID, "Oreochromis niloticus", taalEnv, mock.Anything)
	runs.AssertCalled(t, "EndRun", result.RunID, mock.Anything, 13, false, result.Predictions[0].LakeName)
	mgr.AssertExpectations(t)
	runs.AssertExpectations(t)
}

func TestScoreAllLakesRunTrackingFailure(t *testing.T) {
	runs := &iocache.MockRunStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(runs)
	runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	eng := newTestEngine(t, newStubClassifier(), Options{Cache: mgr})
	result, err := eng.ScoreAllLakes(context.Background(), "Oreochromis niloticus", taalEnv, ScoreOptions{})
	require.NoError(t, err, "tracking failures never fail scoring")
	assert.Len(t, result.Predictions, 13)
	runs.AssertNotCalled(t, "RecordLakes", mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreAllLakesMetrics(t *testing.T) {
	rec := metrics.New()
	eng := newTestEngine(t, newStubClassifier(), Options{Metrics: rec})

	_, err := eng.ScoreAllLakes(context.Background(), "Gambusia affinis", farEnv, ScoreOptions{})
	require.NoError(t, err)
	_, err = eng.ScoreAllLakes(context.Background(), "Nobody", taalEnv, ScoreOptions{})
	require.Error(t, err)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["lakerisk_predictions_total"])
	assert.True(t, names["lakerisk_prediction_failures_total"])
	assert.True(t, names["lakerisk_far_input_warnings_total"])
}

func TestNewEngineValidation(t *testing.T) {
	ref, err := reference.Default()
	require.NoError(t, err)

	clf := newStubClassifier()
	clf.columns = []string{"species", "lake_color"}
	_, err = NewEngine(ref, clf, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Contains(t, err.Error(), `unknown input column "lake_color"`)

	clf.columns = nil
	_, err = NewEngine(ref, clf, Options{})
	assert.ErrorIs(t, err, ErrPredictionFailed)

	_, err = NewEngine(nil, newStubClassifier(), Options{})
	assert.ErrorIs(t, err, ErrPredictionFailed)
	_, err = NewEngine(ref, nil, Options{})
	assert.ErrorIs(t, err, ErrPredictionFailed)
}

func FuzzScoreAllLakes(f *testing.F) {
	f.Add(7.5, 0.5, 6.0, 2.0, 10.0, 27.0)
	f.Add(8.32, 0.85, 5.61, 3.82, 28.0, 25.5)
	f.Add(0.0, 0.0, 0.0, 0.0, 0.0, 0.0)
	f.Add(14.0, 50.0, 20.0, 100.0, 5000.0, 45.0)

	eng := newTestEngine(f, newStubClassifier(), Options{Workers: 2})
	f.Fuzz(func(t *testing.T, ph, sal, do, bod, turb, temp float64) {
		env := schema.EnvironmentVector{PH: ph, Salinity: sal, DissolvedOxygen: do, BOD: bod, Turbidity: turb, Temperature: temp}
		result, err := eng.ScoreAllLakes(context.Background(), "Clarias batrachus", env, ScoreOptions{})
		if env.Validate() != nil {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input for %+v, got %v", env, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", env, err)
		}
		for _, p := range result.Predictions {
			if p.AdjustedScore > p.RawScore {
				t.Fatalf("adjusted %v exceeds raw %v", p.AdjustedScore, p.RawScore)
			}
			if p.Similarity < 0 || p.Similarity > 1 {
				t.Fatalf("similarity %v out of range", p.Similarity)
			}
		}
	})
}

func BenchmarkScoreAllLakes(b *testing.B) {
	m, err := classifier.Default()
	require.NoError(b, err)
	ref, err := reference.Default()
	require.NoError(b, err)
	eng, err := NewEngine(ref, m, Options{})
	require.NoError(b, err)

	ctx := context.Background()
	env := schema.EnvironmentVector{PH: 7.5, Salinity: 0.5, DissolvedOxygen: 6, BOD: 2, Turbidity: 10, Temperature: 27}
	for b.Loop() {
		_, _ = eng.ScoreAllLakes(ctx, "Oreochromis niloticus", env, ScoreOptions{})
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
