// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/lakerisk/schema"
)

// ReferenceStore is the read-only source of lakes, species and presence observations.
// Implementations must be safe for concurrent reads.
type ReferenceStore interface {
	PresenceLookup

	// Lakes returns every lake baseline in insertion order.
	Lakes() []schema.LakeBaseline

	// Lake looks up a lake by canonical name or a known alias.
	Lake(name string) (schema.LakeBaseline, bool)

	// Species looks up a species by exact scientific name.
	Species(name string) (schema.SpeciesRecord, bool)

	// SpeciesNames returns every species name in sorted order.
	SpeciesNames() []string

	// RecordsCount returns the number of observation records for a species.
	RecordsCount(species string) int

	// TotalRecords returns the number of observation records across all species.
	TotalRecords() int
}

// PresenceLookup reports whether a species has been observed in a lake.
type PresenceLookup interface {
	PresenceOf(species, lake string) schema.Presence
}

// Classifier turns classifier input rows into invasion probabilities.
// This allows the scoring core to be tested without a real model artifact.
type Classifier interface {
	// Predict returns one probability in [0,1] per row, in row order.
	Predict(ctx context.Context, rows []schema.ClassifierRow) ([]float64, error)

	// FeatureImportances returns raw importances keyed by model feature name.
	FeatureImportances() map[string]float64

	// InputColumns returns the input column names the model was trained on.
	InputColumns() []string

	// Describe returns identifying information about the loaded model.
	Describe() schema.ModelInfo
}
