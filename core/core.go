// Package core has core logic for scoring, attribution and ranking.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/outwriter"
	"github.com/huangsam/lakerisk/schema"
)

// ExecutorFunc defines the function signature for executing CLI commands against an engine.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, eng *Engine) error

// headerWriter receives run headers.
var headerWriter io.Writer = os.Stderr

// ExecutePredict scores the configured species and prints the ranked predictions.
func ExecutePredict(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	start := time.Now()
	result, err := runScoring(ctx, cfg, eng)
	if err != nil {
		return err
	}
	return outwriter.PrintPredictions(result, cfg, time.Since(start))
}

// ExecuteGeoJSON scores the configured species and prints a GeoJSON FeatureCollection.
func ExecuteGeoJSON(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	result, err := runScoring(ctx, cfg, eng)
	if err != nil {
		return err
	}
	return outwriter.PrintGeoJSON(ToGeoJSON(result), cfg)
}

// ExecuteTable scores the configured species and prints compact table rows.
func ExecuteTable(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	start := time.Now()
	result, err := runScoring(ctx, cfg, eng)
	if err != nil {
		return err
	}
	return outwriter.PrintTableRows(ToTableRows(result), result.Warning, cfg, time.Since(start))
}

// ExecuteImportance prints the feature attribution.
func ExecuteImportance(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	attr, err := eng.FeatureImportanceBreakdown(ctx)
	if err != nil {
		return err
	}
	// Unknown is printed when no parameter carries importance.
	most, _ := algo.MostContributing(attr)
	return outwriter.PrintImportance(attr, most, cfg)
}

// ExecuteOverview prints the reference data and model summary.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	ov, err := eng.Overview(ctx)
	if err != nil {
		return err
	}
	return outwriter.PrintOverview(ov, cfg)
}

// ExecuteSpecies prints all species names, or one species' details when cfg.Species is set.
func ExecuteSpecies(_ context.Context, cfg *contract.Config, eng *Engine) error {
	if cfg.Species == "" {
		return outwriter.PrintSpeciesList(eng.ListSpecies(), cfg)
	}
	info, err := eng.SpeciesInfo(cfg.Species)
	if err != nil {
		return err
	}
	return outwriter.PrintSpeciesInfo(info, cfg)
}

// ExecuteLakes prints every lake baseline.
func ExecuteLakes(_ context.Context, cfg *contract.Config, eng *Engine) error {
	return outwriter.PrintLakes(eng.ListLakes(), cfg)
}

// ExecuteLake prints a single lake looked up by name or alias.
func ExecuteLake(_ context.Context, cfg *contract.Config, eng *Engine, name string) error {
	lake, err := eng.GetLake(name)
	if err != nil {
		return err
	}
	return outwriter.PrintLakes([]schema.LakeBaseline{lake}, cfg)
}

// ExecuteRank ranks every species by its best lake under the configured conditions.
func ExecuteRank(ctx context.Context, cfg *contract.Config, eng *Engine) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		logConditionsHeader(cfg, "all species")
	}
	rankings, err := eng.RankSpecies(ctx, cfg.Env, cfg.TopSpecies)
	if err != nil {
		return err
	}
	return outwriter.PrintRanking(rankings, cfg, time.Since(start))
}

// runScoring validates that a species is configured and scores it.
func runScoring(ctx context.Context, cfg *contract.Config, eng *Engine) (*schema.PredictionResult, error) {
	if cfg.Species == "" {
		return nil, newError(KindInvalidInput, nil, "species is required")
	}
	if !shouldSuppressHeader(ctx) {
		logConditionsHeader(cfg, cfg.Species)
	}
	return eng.ScoreAllLakes(ctx, cfg.Species, cfg.Env, ScoreOptions{
		Order:   cfg.Order,
		Limit:   cfg.ResultLimit,
		Workers: cfg.Workers,
	})
}

// logConditionsHeader prints a concise, 2-line header for each scoring run.
func logConditionsHeader(cfg *contract.Config, subject string) {
	env := cfg.Env
	if cfg.UseEmojis {
		_, _ = fmt.Fprintf(headerWriter, "🐟 Species: %s (Order: %s)\n", subject, orderLabel(cfg.Order))
		_, _ = fmt.Fprintf(headerWriter, "🌊 Conditions: pH %.2f | Salinity %.2f | DO %.2f | BOD %.2f | Turbidity %.2f | Temp %.2f\n",
			env.PH, env.Salinity, env.DissolvedOxygen, env.BOD, env.Turbidity, env.Temperature)
		return
	}
	_, _ = fmt.Fprintf(headerWriter, "Species: %s (Order: %s)\n", subject, orderLabel(cfg.Order))
	_, _ = fmt.Fprintf(headerWriter, "Conditions: pH %.2f | Salinity %.2f | DO %.2f | BOD %.2f | Turbidity %.2f | Temp %.2f\n",
		env.PH, env.Salinity, env.DissolvedOxygen, env.BOD, env.Turbidity, env.Temperature)
}

func orderLabel(order schema.RankOrder) string {
	if order == "" {
		return string(schema.AdjustedOrder)
	}
	return string(order)
}
