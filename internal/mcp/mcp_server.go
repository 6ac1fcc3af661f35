// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/lakerisk/core"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// environmentOptions are the six water-quality inputs shared by scoring tools.
func environmentOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("ph", mcp.Description("Water pH (0-14)."), mcp.Required()),
		mcp.WithNumber("salinity", mcp.Description("Salinity in ppt."), mcp.Required()),
		mcp.WithNumber("do", mcp.Description("Dissolved oxygen in mg/L."), mcp.Required()),
		mcp.WithNumber("bod", mcp.Description("Biochemical oxygen demand in mg/L."), mcp.Required()),
		mcp.WithNumber("turbidity", mcp.Description("Turbidity in NTU."), mcp.Required()),
		mcp.WithNumber("temperature", mcp.Description("Water temperature in degrees Celsius."), mcp.Required()),
	}
}

// scoringTool builds a tool that takes a species plus the environment inputs.
func scoringTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("species", mcp.Description("Scientific name of the species, e.g. 'Oreochromis niloticus'."), mcp.Required()),
	}
	opts = append(opts, environmentOptions()...)
	opts = append(opts, extra...)
	return mcp.NewTool(name, opts...)
}

// NewMCPServer initializes and configures the lakerisk MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, eng *core.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"Lake Invasion Risk Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		eng:     eng,
	}

	// --- 1. Tool: score_lakes ---
	s.AddTool(scoringTool("score_lakes",
		"Score a species against every reference lake and return ranked invasion risk predictions.",
		mcp.WithString("order", mcp.Description("Ranking order. Defaults to 'adjusted'."), mcp.Enum("adjusted", "raw")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of lakes returned (0 keeps every lake).")),
	), h.handleScoreLakes)

	// --- 2. Tool: get_geojson ---
	s.AddTool(scoringTool("get_geojson",
		"Score a species and return the lakes as a GeoJSON FeatureCollection for mapping.",
	), h.handleGetGeoJSON)

	// --- 3. Tool: get_risk_table ---
	s.AddTool(scoringTool("get_risk_table",
		"Score a species and return compact table rows (lake, region, score, risk level, presence).",
	), h.handleGetRiskTable)

	// --- 4. Tool: feature_importance ---
	s.AddTool(mcp.NewTool("feature_importance",
		mcp.WithDescription("Return the classifier's feature importance grouped by water-quality parameter."),
		mcp.WithBoolean("detail", mcp.Description("Include the top-50 per-feature breakdown.")),
	), h.handleFeatureImportance)

	// --- 5. Tool: most_contributing_feature ---
	s.AddTool(mcp.NewTool("most_contributing_feature",
		mcp.WithDescription("Return the single water-quality parameter with the highest importance."),
	), h.handleMostContributing)

	// --- 6. Tool: list_species ---
	s.AddTool(mcp.NewTool("list_species",
		mcp.WithDescription("List every known species, or the details of one species."),
		mcp.WithString("name", mcp.Description("Optional scientific name to look up.")),
	), h.handleListSpecies)

	// --- 7. Tool: list_lakes ---
	s.AddTool(mcp.NewTool("list_lakes",
		mcp.WithDescription("List every reference lake with its baseline conditions and coordinates."),
	), h.handleListLakes)

	// --- 8. Tool: get_lake ---
	s.AddTool(mcp.NewTool("get_lake",
		mcp.WithDescription("Look up a single lake by canonical name or a known alias (e.g. 'Taal Lake')."),
		mcp.WithString("name", mcp.Description("Lake name or alias."), mcp.Required()),
	), h.handleGetLake)

	// --- 9. Tool: rank_species ---
	rankOpts := []mcp.ToolOption{
		mcp.WithDescription("Rank every species by its highest-risk lake under the given conditions."),
		mcp.WithNumber("top", mcp.Description("Number of species to return. Defaults to 20.")),
	}
	rankOpts = append(rankOpts, environmentOptions()...)
	s.AddTool(mcp.NewTool("rank_species", rankOpts...), h.handleRankSpecies)

	return s
}

// StartMCPServer starts the lakerisk MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, eng *core.Engine) error {
	s := NewMCPServer(baseCfg, eng)
	return server.ServeStdio(s)
}
