package algo

import (
	"errors"
	"sort"
	"strings"

	"github.com/huangsam/lakerisk/schema"
)

// DetailedBreakdownSize is how many raw features the detailed breakdown keeps.
const DetailedBreakdownSize = 50

// ParameterRule maps model feature names to a parameter by substring keywords.
type ParameterRule struct {
	Parameter schema.Parameter
	Keywords  []string
}

// ParameterRules is checked in order and the first matching rule wins.
// Matching is substring-based, so names like "phylum" and "trophic" land in pH.
var ParameterRules = []ParameterRule{
	{Parameter: schema.ParamPH, Keywords: []string{"ph", "_ph_", "ph_"}},
	{Parameter: schema.ParamSalinity, Keywords: []string{"salinity", "sal_", "_sal"}},
	{Parameter: schema.ParamDissolvedOxygen, Keywords: []string{"_do_", "_do", "oxygen", "dissolved"}},
	{Parameter: schema.ParamBOD, Keywords: []string{"bod", "_bod_", "bod_"}},
	{Parameter: schema.ParamTurbidity, Keywords: []string{"turbidity", "turb_", "_turb"}},
	{Parameter: schema.ParamTemperature, Keywords: []string{"temp", "_temp_", "temp_"}},
}

// MatchParameter returns the parameter a model feature name maps to.
func MatchParameter(feature string) (schema.Parameter, bool) {
	lower := strings.ToLower(feature)
	for _, rule := range ParameterRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Parameter, true
			}
		}
	}
	return schema.UnmatchedParameter, false
}

// Attribute aggregates raw feature importances into the six parameters.
// Percentages are relative to the total over all features, matched or not.
func Attribute(importances map[string]float64) schema.FeatureAttribution {
	sums := make(map[schema.Parameter]float64, len(schema.AllParameters))
	counts := make(map[schema.Parameter]int, len(schema.AllParameters))
	detailed := make([]schema.FeatureImportance, 0, len(importances))

	var total float64
	for name, imp := range importances {
		param, _ := MatchParameter(name)
		sums[param] += imp
		counts[param]++
		total += imp
		detailed = append(detailed, schema.FeatureImportance{Feature: name, Parameter: param, Importance: imp})
	}

	pct := func(v float64) float64 {
		if total <= 0 {
			return 0
		}
		return v / total * 100
	}

	attr := schema.FeatureAttribution{
		Parameters:      make([]schema.ParameterImportance, 0, len(schema.AllParameters)),
		TotalImportance: total,
		TotalFeatures:   len(importances),
		Unmatched: schema.UnmatchedImportance{
			TotalImportance: sums[schema.UnmatchedParameter],
			FeatureCount:    counts[schema.UnmatchedParameter],
			Percentage:      pct(sums[schema.UnmatchedParameter]),
		},
	}
	for _, p := range schema.AllParameters {
		attr.Parameters = append(attr.Parameters, schema.ParameterImportance{
			Parameter:       p,
			TotalImportance: sums[p],
			FeatureCount:    counts[p],
			Percentage:      pct(sums[p]),
		})
	}

	sort.Slice(detailed, func(i, j int) bool {
		if detailed[i].Importance != detailed[j].Importance {
			return detailed[i].Importance > detailed[j].Importance
		}
		return detailed[i].Feature < detailed[j].Feature
	})
	if len(detailed) > DetailedBreakdownSize {
		detailed = detailed[:DetailedBreakdownSize]
	}
	for i := range detailed {
		detailed[i].Percentage = pct(detailed[i].Importance)
	}
	attr.Detailed = detailed
	return attr
}

// ErrNoImportance means no model feature maps to any of the six parameters.
var ErrNoImportance = errors.New("no importance data for any water-quality parameter")

// MostContributing picks the parameter with the largest summed importance.
// Its percentage is the share of the six matched parameters only, so the
// unmatched bucket neither wins nor dilutes it. Ties go to the earlier parameter.
// When the matched total is zero the result is ParamUnknown with ErrNoImportance.
func MostContributing(attr schema.FeatureAttribution) (schema.MostContributing, error) {
	var matched float64
	for _, p := range attr.Parameters {
		matched += p.TotalImportance
	}
	if matched <= 0 {
		return schema.MostContributing{Parameter: schema.ParamUnknown}, ErrNoImportance
	}

	var best schema.MostContributing
	found := false
	for _, p := range attr.Parameters {
		if !found || p.TotalImportance > best.ImportanceScore {
			best = schema.MostContributing{
				Parameter:       p.Parameter,
				ImportanceScore: p.TotalImportance,
			}
			found = true
		}
	}
	best.Percentage = best.ImportanceScore / matched * 100
	return best, nil
}
