package core

import (
	"context"
	"errors"

	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/schema"
)

// ListSpecies returns every species name in sorted order.
func (e *Engine) ListSpecies() []string {
	return e.ref.SpeciesNames()
}

// ListLakes returns every lake baseline in reference order.
func (e *Engine) ListLakes() []schema.LakeBaseline {
	return e.ref.Lakes()
}

// GetLake looks up a lake by exact name or known alias.
func (e *Engine) GetLake(name string) (schema.LakeBaseline, error) {
	lake, ok := e.ref.Lake(name)
	if !ok {
		return schema.LakeBaseline{}, newError(KindLakeNotFound, nil, "lake '%s' not found", name)
	}
	return lake, nil
}

// SpeciesInfo returns the descriptive summary of a species.
func (e *Engine) SpeciesInfo(name string) (schema.SpeciesInfo, error) {
	sp, ok := e.ref.Species(name)
	if !ok {
		return schema.SpeciesInfo{}, newError(KindSpeciesNotFound, nil, "species '%s' not found", name)
	}
	return schema.SpeciesInfo{
		Species:          sp.Species,
		CommonName:       sp.CommonName,
		Family:           sp.Family,
		Order:            sp.Order,
		Status:           sp.Status,
		FeedingType:      sp.FeedingType,
		TrophicLevel:     sp.TrophicLvl,
		TemperatureRange: schema.TemperatureRange{Min: sp.TempPrefMin, Max: sp.TempPrefMax},
		LengthMax:        sp.LengthMax,
		WeightMax:        sp.WeightMax,
		RecordsCount:     e.ref.RecordsCount(sp.Species),
	}, nil
}

// Overview summarizes the reference data and the loaded model.
func (e *Engine) Overview(ctx context.Context) (schema.Overview, error) {
	names := e.ref.SpeciesNames()
	dist := make(map[string]int)
	for _, name := range names {
		sp, _ := e.ref.Species(name)
		status := sp.Status
		if status == "" {
			status = "Unknown"
		}
		dist[status]++
	}

	// An artifact without parameter importances still has an overview.
	most, err := e.MostContributingFeature(ctx)
	if err != nil && !errors.Is(err, algo.ErrNoImportance) {
		return schema.Overview{}, err
	}

	return schema.Overview{
		TotalSpecies:       len(names),
		TotalRecords:       e.ref.TotalRecords(),
		TotalLakes:         len(e.ref.Lakes()),
		Model:              e.classifier.Describe(),
		StatusDistribution: dist,
		MostContributing:   most,
	}, nil
}
