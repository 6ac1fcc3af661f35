package classifier

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyArtifact() Artifact {
	return Artifact{
		Name:      "tiny",
		Version:   "0.1.0",
		BaseScore: 0.5,
		Features: []TransformedFeature{
			{Name: "num__input_temp", Column: "input_temp", Kind: schema.NumericColumn, Mean: 0, Scale: 1},
			{Name: "cat__status_Invasive", Column: "status", Kind: schema.CategoricalColumn, Category: "Invasive"},
		},
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 25, Yes: 1, No: 2, Missing: 1, Gain: 4},
				{Leaf: true, Value: -1},
				{Leaf: true, Value: 1},
			}},
			{Nodes: []Node{
				{Feature: 1, Threshold: 0.5, Yes: 1, No: 2, Missing: 1, Gain: 10},
				{Leaf: true, Value: 0},
				{Leaf: true, Value: 2},
			}},
		},
	}
}

func marshalArtifact(t *testing.T, a Artifact) []byte {
	t.Helper()
	data, err := json.Marshal(a)
	require.NoError(t, err)
	return data
}

func TestBoostedModelPredict(t *testing.T) {
	m, err := NewBoostedModel(marshalArtifact(t, tinyArtifact()), "test")
	require.NoError(t, err)

	rows := []schema.ClassifierRow{
		{InputTemp: 30, Status: "Invasive"},
		{InputTemp: 20, Status: "Native"},
		{InputTemp: 25, Status: "Native"},
	}
	probs, err := m.Predict(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, probs, 3)
	assert.InDelta(t, 1/(1+math.Exp(-3)), probs[0], 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(1)), probs[1], 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-1)), probs[2], 1e-12, "threshold is exclusive on the yes branch")

	again, err := m.Predict(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, probs, again)

	empty, err := m.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBoostedModelPredictCanceled(t *testing.T) {
	m, err := NewBoostedModel(marshalArtifact(t, tinyArtifact()), "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Predict(ctx, []schema.ClassifierRow{{}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBoostedModelBaseScore(t *testing.T) {
	a := tinyArtifact()
	a.BaseScore = 0.25
	m, err := NewBoostedModel(marshalArtifact(t, a), "test")
	require.NoError(t, err)

	probs, err := m.Predict(context.Background(), []schema.ClassifierRow{{InputTemp: 20, Status: "Invasive"}})
	require.NoError(t, err)
	// -1 + 2 on top of the base score margin
	assert.InDelta(t, 1/(1+math.Exp(-1-math.Log(1.0/3))), probs[0], 1e-12)
}

func TestBoostedModelImportances(t *testing.T) {
	t.Run("gain", func(t *testing.T) {
		m, err := NewBoostedModel(marshalArtifact(t, tinyArtifact()), "test")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"num__input_temp": 4, "cat__status_Invasive": 10}, m.FeatureImportances())
	})

	t.Run("explicit", func(t *testing.T) {
		a := tinyArtifact()
		a.Importances = map[string]float64{"f0": 3, "f1": 1, "f9": 0.5, "bogus": 2}
		m, err := NewBoostedModel(marshalArtifact(t, a), "test")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{
			"num__input_temp":      3,
			"cat__status_Invasive": 1,
			"f9":                   0.5,
			"bogus":                2,
		}, m.FeatureImportances())
	})

	t.Run("copy", func(t *testing.T) {
		m, err := NewBoostedModel(marshalArtifact(t, tinyArtifact()), "test")
		require.NoError(t, err)
		imp := m.FeatureImportances()
		imp["num__input_temp"] = 100
		assert.Equal(t, 4.0, m.FeatureImportances()["num__input_temp"])
	})
}

func TestBoostedModelDescribe(t *testing.T) {
	data := marshalArtifact(t, tinyArtifact())
	m, err := NewBoostedModel(data, "test")
	require.NoError(t, err)

	info := m.Describe()
	assert.Equal(t, "tiny", info.Name)
	assert.Equal(t, "0.1.0", info.Version)
	assert.Equal(t, "test", info.Source)
	assert.Equal(t, 2, info.FeatureCount)
	assert.Len(t, info.Checksum, 64)
	assert.Equal(t, []string{"input_temp", "status"}, m.InputColumns())

	other := tinyArtifact()
	other.Version = "0.2.0"
	m2, err := NewBoostedModel(marshalArtifact(t, other), "test")
	require.NoError(t, err)
	assert.NotEqual(t, info.Checksum, m2.Describe().Checksum)
}

func TestLoadArtifactValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(a *Artifact)
		expectError string
	}{
		{"no name", func(a *Artifact) { a.Name = "" }, "has no name"},
		{"base score", func(a *Artifact) { a.BaseScore = 1 }, "base_score must be in"},
		{"no features", func(a *Artifact) { a.Features = nil }, "has no features"},
		{"no trees", func(a *Artifact) { a.Trees = nil }, "has no trees"},
		{"duplicate feature", func(a *Artifact) { a.Features[1] = a.Features[0] }, "duplicate feature"},
		{"zero scale", func(a *Artifact) { a.Features[0].Scale = 0 }, "invalid scale"},
		{"bad prefix", func(a *Artifact) { a.Features[0].Name = "input_temp" }, "must start with num__"},
		{"bad kind", func(a *Artifact) { a.Features[1].Kind = "ordinal" }, "unknown kind"},
		{"no column", func(a *Artifact) { a.Features[1].Column = "" }, "no source column"},
		{"split feature", func(a *Artifact) { a.Trees[0].Nodes[0].Feature = 7 }, "unknown feature"},
		{"backward child", func(a *Artifact) { a.Trees[1].Nodes[0].No = 0 }, "invalid child"},
		{"empty tree", func(a *Artifact) { a.Trees[1].Nodes = nil }, "empty tree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tinyArtifact()
			tt.mutate(&a)
			_, _, err := LoadArtifact(marshalArtifact(t, a))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}

	_, _, err := LoadArtifact([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode model artifact")
}

func TestPredictUnknownColumn(t *testing.T) {
	a := tinyArtifact()
	a.Features[0].Column = "no_such_column"
	m, err := NewBoostedModel(marshalArtifact(t, a), "test")
	require.NoError(t, err)

	_, err = m.Predict(context.Background(), []schema.ClassifierRow{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown numeric column")
}

func TestDefaultModel(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	info := m.Describe()
	assert.Equal(t, "embedded", info.Source)
	assert.NotEmpty(t, info.Version)
	assert.Greater(t, info.FeatureCount, 0)

	for _, col := range m.InputColumns() {
		_, ok := schema.LookupColumn(col)
		assert.True(t, ok, "column %q must be part of the classifier schema", col)
	}

	imp := m.FeatureImportances()
	assert.NotEmpty(t, imp)
	for _, v := range imp {
		assert.Greater(t, v, 0.0)
	}

	rows := []schema.ClassifierRow{
		{Species: "Oreochromis niloticus", Status: "Introduced", InputTemp: 27, InputPH: 7.5, WaterbodyName: "Lake Taal"},
		{Species: "Channa striata", Status: "Native", InputTemp: 15, InputPH: 6, WaterbodyName: "Lake Danao"},
	}
	probs, err := m.Predict(context.Background(), rows)
	require.NoError(t, err)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, marshalArtifact(t, tinyArtifact()), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path, m.Describe().Source)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read model artifact")
}

func BenchmarkDefaultPredict(b *testing.B) {
	m, err := Default()
	require.NoError(b, err)
	rows := make([]schema.ClassifierRow, 13)
	for i := range rows {
		rows[i] = schema.ClassifierRow{Status: "Invasive", InputTemp: float64(20 + i), InputPH: 7.5}
	}
	ctx := context.Background()
	for b.Loop() {
		_, _ = m.Predict(ctx, rows)
	}
}
