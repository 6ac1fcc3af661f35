package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/lakerisk/core"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	eng     *core.Engine
}

// toolError reports a failure as "kind: message".
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", core.KindOf(err), err))
}

// invalidInput reports a request validation failure.
func invalidInput(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", core.KindInvalidInput, fmt.Sprintf(format, args...)))
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// environmentKeys are the argument names of the six inputs, in vector order.
var environmentKeys = []string{"ph", "salinity", "do", "bod", "turbidity", "temperature"}

// environment reads the six inputs. Every value must be present and numeric.
func environment(request mcp.CallToolRequest) (schema.EnvironmentVector, *mcp.CallToolResult) {
	args := request.GetArguments()
	values := make([]float64, len(environmentKeys))
	for i, key := range environmentKeys {
		raw, ok := args[key]
		if !ok || raw == nil {
			return schema.EnvironmentVector{}, invalidInput("missing required field '%s'", key)
		}
		v, ok := toFloat(raw)
		if !ok {
			return schema.EnvironmentVector{}, invalidInput("field '%s' must be a number (received %v)", key, raw)
		}
		values[i] = v
	}
	return schema.EnvironmentVector{
		PH:              values[0],
		Salinity:        values[1],
		DissolvedOxygen: values[2],
		BOD:             values[3],
		Turbidity:       values[4],
		Temperature:     values[5],
	}, nil
}

// toFloat accepts the numeric types a decoded tool argument can carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// score runs ScoreAllLakes for the species and environment in the request.
func (h *toolHandler) score(ctx context.Context, request mcp.CallToolRequest, opts core.ScoreOptions) (*schema.PredictionResult, *mcp.CallToolResult) {
	species := strings.TrimSpace(request.GetString("species", ""))
	if species == "" {
		return nil, invalidInput("species is required")
	}
	env, toolErr := environment(request)
	if toolErr != nil {
		return nil, toolErr
	}
	if opts.Workers == 0 {
		opts.Workers = h.baseCfg.Workers
	}

	result, err := h.eng.ScoreAllLakes(core.WithSuppressHeader(ctx), species, env, opts)
	if err != nil {
		return nil, toolError(err)
	}
	return result, nil
}

func (h *toolHandler) handleScoreLakes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	order := schema.RankOrder(strings.ToLower(request.GetString("order", string(h.baseCfg.Order))))
	if order == "" {
		order = schema.AdjustedOrder
	}
	if _, ok := schema.ValidRankOrders[order]; !ok {
		return invalidInput("invalid order '%s'. must be adjusted, raw", order), nil
	}
	limit := request.GetInt("limit", h.baseCfg.ResultLimit)
	if limit < 0 || limit > contract.MaxResultLimit {
		return invalidInput("limit must be between 0 and %d (received %d)", contract.MaxResultLimit, limit), nil
	}

	result, toolErr := h.score(ctx, request, core.ScoreOptions{Order: order, Limit: limit})
	if toolErr != nil {
		return toolErr, nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetGeoJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, toolErr := h.score(ctx, request, core.ScoreOptions{})
	if toolErr != nil {
		return toolErr, nil
	}
	return jsonResult(core.ToGeoJSON(result))
}

func (h *toolHandler) handleGetRiskTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, toolErr := h.score(ctx, request, core.ScoreOptions{})
	if toolErr != nil {
		return toolErr, nil
	}
	return jsonResult(schema.TableResponse{Rows: core.ToTableRows(result), Warning: result.Warning})
}

func (h *toolHandler) handleFeatureImportance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	attr, err := h.eng.FeatureImportanceBreakdown(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if !request.GetBool("detail", false) {
		attr.Detailed = nil
	}
	return jsonResult(attr)
}

func (h *toolHandler) handleMostContributing(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	most, err := h.eng.MostContributingFeature(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(most)
}

func (h *toolHandler) handleListSpecies(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return jsonResult(h.eng.ListSpecies())
	}
	info, err := h.eng.SpeciesInfo(name)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(info)
}

func (h *toolHandler) handleListLakes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.eng.ListLakes())
}

func (h *toolHandler) handleGetLake(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return invalidInput("name is required"), nil
	}
	lake, err := h.eng.GetLake(name)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(lake)
}

func (h *toolHandler) handleRankSpecies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top := request.GetInt("top", h.baseCfg.TopSpecies)
	if top <= 0 || top > contract.MaxResultLimit {
		return invalidInput("top must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, top), nil
	}

	env, toolErr := environment(request)
	if toolErr != nil {
		return toolErr, nil
	}

	rankings, err := h.eng.RankSpecies(core.WithSuppressHeader(ctx), env, top)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(rankings)
}
