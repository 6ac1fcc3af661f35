package schema

// ParameterImportance is the aggregated importance of one canonical parameter.
type ParameterImportance struct {
	Parameter       Parameter `json:"parameter"`
	TotalImportance float64   `json:"total_importance"`
	FeatureCount    int       `json:"feature_count"`
	Percentage      float64   `json:"percentage"`
}

// UnmatchedImportance is the importance of features mapped to no parameter.
type UnmatchedImportance struct {
	TotalImportance float64 `json:"total_importance"`
	FeatureCount    int     `json:"feature_count"`
	Percentage      float64 `json:"percentage"`
}

// FeatureImportance is one raw model feature and the parameter it maps to.
type FeatureImportance struct {
	Feature    string    `json:"feature"`
	Parameter  Parameter `json:"parameter"`
	Importance float64   `json:"importance"`
	Percentage float64   `json:"percentage"`
}

// FeatureAttribution aggregates model feature importances into the six parameters.
type FeatureAttribution struct {
	Parameters      []ParameterImportance `json:"parameters"`
	Unmatched       UnmatchedImportance   `json:"unmatched"`
	TotalImportance float64               `json:"total_importance"`
	TotalFeatures   int                   `json:"total_features"`
	Detailed        []FeatureImportance   `json:"detailed_breakdown"`
}

// MostContributing is the parameter with the largest summed importance.
type MostContributing struct {
	Parameter       Parameter `json:"most_contributing_feature"`
	ImportanceScore float64   `json:"importance_score"`
	Percentage      float64   `json:"percentage"`
}
