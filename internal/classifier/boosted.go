package classifier

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
)

//go:embed artifacts/general.json
var generalArtifact []byte

// Model sources reported by Describe.
const (
	embeddedSource = "embedded"
	fileSource     = "file"
	remoteSource   = "remote"
)

// ctxCheckInterval is how many rows are scored between context checks.
const ctxCheckInterval = 64

// BoostedModel evaluates a gradient-boosted tree artifact in process.
// It is immutable after construction and safe for concurrent use.
type BoostedModel struct {
	artifact    *Artifact
	checksum    string
	source      string
	baseMargin  float64
	importances map[string]float64
	columns     []string
}

var _ contract.Classifier = &BoostedModel{}

// Default returns the model built from the embedded artifact.
func Default() (*BoostedModel, error) {
	return NewBoostedModel(generalArtifact, embeddedSource)
}

// LoadFile reads a model artifact from disk.
func LoadFile(path string) (*BoostedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	return NewBoostedModel(data, fileSource+":"+path)
}

// NewBoostedModel decodes artifact bytes and prepares them for scoring.
func NewBoostedModel(data []byte, source string) (*BoostedModel, error) {
	a, checksum, err := LoadArtifact(data)
	if err != nil {
		return nil, err
	}
	return &BoostedModel{
		artifact:    a,
		checksum:    checksum,
		source:      source,
		baseMargin:  logit(a.BaseScore),
		importances: resolveImportances(a),
		columns:     a.InputColumns(),
	}, nil
}

// Predict returns sigmoid(base margin + sum of leaf values) for each row.
func (m *BoostedModel) Predict(ctx context.Context, rows []schema.ClassifierRow) ([]float64, error) {
	out := make([]float64, len(rows))
	x := make([]float64, len(m.artifact.Features))
	for i := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := encode(m.artifact.Features, &rows[i], x); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = sigmoid(m.baseMargin + margin(m.artifact.Trees, x))
	}
	return out, nil
}

// FeatureImportances returns a copy of the importances keyed by transformed feature name.
func (m *BoostedModel) FeatureImportances() map[string]float64 {
	out := make(map[string]float64, len(m.importances))
	for k, v := range m.importances {
		out[k] = v
	}
	return out
}

// InputColumns returns the source columns the pipeline reads.
func (m *BoostedModel) InputColumns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// Describe returns identifying information about the artifact.
func (m *BoostedModel) Describe() schema.ModelInfo {
	return schema.ModelInfo{
		Name:         m.artifact.Name,
		Version:      m.artifact.Version,
		Source:       m.source,
		Checksum:     m.checksum,
		FeatureCount: len(m.artifact.Features),
	}
}

// resolveImportances uses the artifact's explicit importances when present and
// otherwise falls back to average split gain per feature.
func resolveImportances(a *Artifact) map[string]float64 {
	if len(a.Importances) > 0 {
		out := make(map[string]float64, len(a.Importances))
		for k, v := range a.Importances {
			out[featureName(a.Features, k)] += v
		}
		return out
	}

	gains := make(map[int]float64)
	splits := make(map[int]int)
	for _, t := range a.Trees {
		for _, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			gains[n.Feature] += n.Gain
			splits[n.Feature]++
		}
	}
	out := make(map[string]float64, len(gains))
	for idx, g := range gains {
		out[a.Features[idx].Name] = g / float64(splits[idx])
	}
	return out
}

// featureName maps an "f{i}" key to the i-th transformed feature name.
// Keys that do not map are kept as-is.
func featureName(features []TransformedFeature, key string) string {
	rest, ok := strings.CutPrefix(key, "f")
	if !ok {
		return key
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || i >= len(features) {
		return key
	}
	return features[i].Name
}
