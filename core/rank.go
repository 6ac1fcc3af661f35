package core

import (
	"context"

	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/schema"
)

// RankSpecies scores every species against all lakes and ranks them by their
// best adjusted score. A topN of zero or less keeps every species.
func (e *Engine) RankSpecies(ctx context.Context, env schema.EnvironmentVector, topN int) ([]schema.SpeciesRanking, error) {
	if err := env.Validate(); err != nil {
		return nil, newError(KindInvalidInput, err, "invalid environment")
	}

	names := e.ref.SpeciesNames()
	rankings := make([]schema.SpeciesRanking, 0, len(names))
	for _, name := range names {
		sp, records, _, err := e.scoreLakes(ctx, name, env, 0)
		if err != nil {
			e.metrics.ObserveFailure(string(KindOf(err)))
			return nil, err
		}
		best := algo.RankPredictions(records, schema.AdjustedOrder, 1)
		if len(best) == 0 {
			continue
		}
		rankings = append(rankings, schema.SpeciesRanking{
			Species:       sp.Species,
			CommonName:    sp.CommonName,
			Family:        sp.Family,
			Status:        sp.Status,
			TopLake:       best[0].LakeName,
			AdjustedScore: best[0].AdjustedScore,
			RiskLevel:     best[0].RiskLevel,
		})
	}
	return algo.RankSpecies(rankings, topN), nil
}
