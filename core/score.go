package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"golang.org/x/sync/errgroup"
)

// FarInputWarning is attached when the input is far from every lake baseline.
const FarInputWarning = "Your inputs differ significantly from all lake baselines. Predictions may be unreliable."

// ScoreAllLakes scores a species against every lake under the given conditions.
// Any classifier failure aborts the whole request.
func (e *Engine) ScoreAllLakes(ctx context.Context, speciesName string, env schema.EnvironmentVector, opts ScoreOptions) (*schema.PredictionResult, error) {
	start := time.Now()
	sp, all, warned, err := e.scoreLakes(ctx, speciesName, env, opts.Workers)
	if err != nil {
		e.metrics.ObserveFailure(string(KindOf(err)))
		return nil, err
	}

	result := &schema.PredictionResult{
		RunID:   uuid.NewString(),
		Species: sp.Species,
		Input:   env,
	}
	if warned {
		result.Warning = FarInputWarning
	}

	ranked := algo.RankPredictions(all, opts.Order, 0)
	e.metrics.ObserveRun(sp.Status, time.Since(start), ranked, warned)
	e.trackRun(result.RunID, sp.Species, env, start, ranked, warned)

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	result.Predictions = ranked
	return result, nil
}

// scoreLakes returns one unsorted record per lake plus whether the far-input warning applies.
func (e *Engine) scoreLakes(ctx context.Context, speciesName string, env schema.EnvironmentVector, workers int) (schema.SpeciesRecord, []schema.PredictionRecord, bool, error) {
	if err := env.Validate(); err != nil {
		return schema.SpeciesRecord{}, nil, false, newError(KindInvalidInput, err, "invalid environment")
	}
	sp, ok := e.ref.Species(speciesName)
	if !ok {
		return schema.SpeciesRecord{}, nil, false, newError(KindSpeciesNotFound, nil, "species '%s' not found", speciesName)
	}

	lakes := e.ref.Lakes()
	probs, err := e.predict(ctx, buildRows(sp, lakes, env), workers)
	if err != nil {
		return sp, nil, false, err
	}

	records := make([]schema.PredictionRecord, len(lakes))
	nearest := math.Inf(1)
	for i, lake := range lakes {
		d, err := algo.Distance(env, lake.Env)
		if err != nil {
			return sp, nil, false, newError(KindInvalidInput, err, "invalid environment")
		}
		nearest = min(nearest, d)
		similarity := algo.SimilarityFromDistance(d)
		adjusted := probs[i] * similarity
		records[i] = schema.PredictionRecord{
			LakeName:      lake.Name,
			Region:        lake.Region,
			Latitude:      lake.Latitude,
			Longitude:     lake.Longitude,
			RawScore:      probs[i],
			Similarity:    similarity,
			AdjustedScore: adjusted,
			RiskLevel:     algo.Categorize(adjusted),
			Presence:      e.ref.PresenceOf(sp.Species, lake.Name),
		}
	}
	return sp, records, nearest > algo.FarDistanceThreshold, nil
}

// predict splits rows into chunks scored by a bounded pool. Results are written
// by index so output order never depends on scheduling.
func (e *Engine) predict(ctx context.Context, rows []schema.ClassifierRow, workers int) ([]float64, error) {
	if workers <= 0 {
		workers = e.workers
	}
	chunk := (len(rows) + workers - 1) / workers
	chunk = max(chunk, 1)

	probs := make([]float64, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(rows); lo += chunk {
		hi := min(lo+chunk, len(rows))
		g.Go(func() error {
			out, err := e.classifier.Predict(gctx, rows[lo:hi])
			if err != nil {
				return err
			}
			if len(out) != hi-lo {
				return fmt.Errorf("classifier returned %d probabilities for %d rows", len(out), hi-lo)
			}
			for i, p := range out {
				if math.IsNaN(p) || p < 0 || p > 1 {
					return fmt.Errorf("classifier returned probability %v for lake %d", p, lo+i)
				}
			}
			copy(probs[lo:hi], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var coreErr *Error
		if errors.As(err, &coreErr) {
			return nil, err
		}
		return nil, newError(KindPredictionFailed, err, "prediction failed")
	}
	return probs, nil
}

// trackRun persists the run when run tracking is enabled. Failures only warn.
func (e *Engine) trackRun(runID, species string, env schema.EnvironmentVector, start time.Time, ranked []schema.PredictionRecord, warned bool) {
	store := e.runStore()
	if store == nil {
		return
	}
	if err := store.BeginRun(runID, species, env, start); err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}
	end := time.Now()
	if err := store.RecordLakes(runID, ranked, end); err != nil {
		contract.LogWarn("Failed to record run lakes", err)
	}
	var topLake string
	if len(ranked) > 0 {
		topLake = ranked[0].LakeName
	}
	if err := store.EndRun(runID, end, len(ranked), warned, topLake); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
