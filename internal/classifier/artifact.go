// Package classifier provides the invasion-probability models behind contract.Classifier:
// a local gradient-boosted tree artifact and a client for a remote model server.
package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/lakerisk/schema"
)

// Transformed feature name prefixes produced by the preprocessing pipeline.
const (
	numericPrefix     = "num__"
	categoricalPrefix = "cat__"
)

// Artifact is the serialized form of a boosted tree model and its preprocessing pipeline.
type Artifact struct {
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	Objective   string               `json:"objective,omitempty"`
	BaseScore   float64              `json:"base_score"`
	Features    []TransformedFeature `json:"features"`
	Trees       []Tree               `json:"trees"`
	Importances map[string]float64   `json:"importances,omitempty"`
}

// TransformedFeature is one column of the encoded feature vector.
// Numeric features are standard-scaled, categorical features are one-hot.
type TransformedFeature struct {
	Name     string            `json:"name"`
	Column   string            `json:"column"`
	Kind     schema.ColumnKind `json:"kind"`
	Mean     float64           `json:"mean,omitempty"`
	Scale    float64           `json:"scale,omitempty"`
	Category string            `json:"category,omitempty"`
}

// Tree is a flat array of nodes rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split or a leaf. Splits send x < Threshold to Yes.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Yes       int     `json:"yes,omitempty"`
	No        int     `json:"no,omitempty"`
	Missing   int     `json:"missing,omitempty"`
	Gain      float64 `json:"gain,omitempty"`
}

// LoadArtifact decodes and validates artifact bytes. The returned checksum is
// the hex sha256 of data.
func LoadArtifact(data []byte) (*Artifact, string, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, "", fmt.Errorf("failed to decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(data)
	return &a, hex.EncodeToString(sum[:]), nil
}

// Validate checks the pipeline and every tree for structural consistency.
func (a *Artifact) Validate() error {
	if a.Name == "" {
		return errors.New("model artifact has no name")
	}
	if a.BaseScore <= 0 || a.BaseScore >= 1 {
		return fmt.Errorf("base_score must be in (0, 1) (received %v)", a.BaseScore)
	}
	if len(a.Features) == 0 {
		return errors.New("model artifact has no features")
	}
	if len(a.Trees) == 0 {
		return errors.New("model artifact has no trees")
	}

	seen := make(map[string]bool, len(a.Features))
	for i, f := range a.Features {
		if seen[f.Name] {
			return fmt.Errorf("duplicate feature %q", f.Name)
		}
		seen[f.Name] = true
		if err := f.validate(); err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
	}

	for t, tree := range a.Trees {
		if err := tree.validate(len(a.Features)); err != nil {
			return fmt.Errorf("tree %d: %w", t, err)
		}
	}
	return nil
}

func (f TransformedFeature) validate() error {
	if f.Column == "" {
		return fmt.Errorf("%q has no source column", f.Name)
	}
	switch f.Kind {
	case schema.NumericColumn:
		if !strings.HasPrefix(f.Name, numericPrefix) {
			return fmt.Errorf("numeric feature %q must start with %s", f.Name, numericPrefix)
		}
		if f.Scale == 0 || math.IsNaN(f.Scale) || math.IsInf(f.Scale, 0) {
			return fmt.Errorf("numeric feature %q has invalid scale %v", f.Name, f.Scale)
		}
	case schema.CategoricalColumn:
		if !strings.HasPrefix(f.Name, categoricalPrefix) {
			return fmt.Errorf("categorical feature %q must start with %s", f.Name, categoricalPrefix)
		}
	default:
		return fmt.Errorf("%q has unknown kind %q", f.Name, f.Kind)
	}
	return nil
}

func (t Tree) validate(featureCount int) error {
	n := len(t.Nodes)
	if n == 0 {
		return errors.New("empty tree")
	}
	for i, node := range t.Nodes {
		if node.Leaf {
			continue
		}
		if node.Feature < 0 || node.Feature >= featureCount {
			return fmt.Errorf("node %d splits on unknown feature %d", i, node.Feature)
		}
		// Children must point forward so evaluation always terminates.
		for _, child := range []int{node.Yes, node.No, node.Missing} {
			if child <= i || child >= n {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// InputColumns returns the distinct source columns in pipeline order.
func (a *Artifact) InputColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, f := range a.Features {
		if !seen[f.Column] {
			seen[f.Column] = true
			cols = append(cols, f.Column)
		}
	}
	return cols
}
